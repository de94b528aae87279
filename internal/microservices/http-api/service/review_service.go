package service

import (
	"context"
	"errors"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/policy"
	"yamdb/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

type ReviewService interface {
	List(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, actor *models.User, titleID int64, req dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	Update(ctx context.Context, actor *models.User, titleID, reviewID int64, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, actor *models.User, titleID, reviewID int64) error
}

type reviewService struct {
	reviews repository.ReviewRepository
	titles  repository.TitleRepository
}

func NewReviewService(reviews repository.ReviewRepository, titles repository.TitleRepository) ReviewService {
	return &reviewService{reviews: reviews, titles: titles}
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error) {
	if err := requireTitle(ctx, s.titles, titleID); err != nil {
		return nil, err
	}
	list, total, err := s.reviews.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.MapPage(list, total, page, pageSize, dto.FromModelToReviewResponse), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.find(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) Create(ctx context.Context, actor *models.User, titleID int64, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if err := PolicyError(policy.AuthenticatedOrReadOnly(actor, policy.Write)); err != nil {
		return nil, err
	}
	if err := requireTitle(ctx, s.titles, titleID); err != nil {
		return nil, err
	}
	if err := checkScore(req.Score); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsByAuthorAndTitle(ctx, actor.ID, titleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, invalid("you have already reviewed title %d", titleID)
	}

	review := &models.Review{
		TitleID:      titleID,
		AuthorID:     actor.ID,
		Score:        req.Score,
		AuthoredText: models.AuthoredText{Text: req.Text},
	}
	// A concurrent create can pass the check above; the unique index settles it.
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, duplicateAsConflict(err, "review", "review by %q for title %d", actor.Username, titleID)
	}
	review.Author = *actor

	resp := dto.FromModelToReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) Update(ctx context.Context, actor *models.User, titleID, reviewID int64, req dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	review, err := s.find(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := PolicyError(policy.OwnerOrModeratorOrAdminOrReadOnly(actor, policy.Write, review)); err != nil {
		return nil, err
	}

	if req.Text != nil {
		if *req.Text == "" {
			return nil, invalid("text may not be blank")
		}
		review.Text = *req.Text
	}
	if req.Score != nil {
		if err := checkScore(*req.Score); err != nil {
			return nil, err
		}
		review.Score = *req.Score
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	resp := dto.FromModelToReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, actor *models.User, titleID, reviewID int64) error {
	review, err := s.find(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := PolicyError(policy.OwnerOrModeratorOrAdminOrReadOnly(actor, policy.Write, review)); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("review %d", reviewID)
		}
		return err
	}
	return nil
}

func (s *reviewService) find(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviews.GetForTitle(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("review %d for title %d", reviewID, titleID)
		}
		return nil, err
	}
	return review, nil
}

func requireTitle(ctx context.Context, titles repository.TitleRepository, titleID int64) error {
	exists, err := titles.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return notFound("title %d", titleID)
	}
	return nil
}

func checkScore(score int) error {
	if score < models.MinScore || score > models.MaxScore {
		return invalid("score must be between %d and %d", models.MinScore, models.MaxScore)
	}
	return nil
}
