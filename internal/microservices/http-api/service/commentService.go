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

type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, actor *models.User, titleID, reviewID int64, req dto.CreateCommentRequest) (*dto.CommentResponse, error)
	Update(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64, req dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	Delete(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64) error
}

type commentService struct {
	comments repository.CommentRepository
	reviews  repository.ReviewRepository
	titles   repository.TitleRepository
}

func NewCommentService(
	comments repository.CommentRepository,
	reviews repository.ReviewRepository,
	titles repository.TitleRepository,
) CommentService {
	return &commentService{
		comments: comments,
		reviews:  reviews,
		titles:   titles,
	}
}

// List returns the comments of a review, oldest first
func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	list, total, err := s.comments.ListByReview(ctx, reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.MapPage(list, total, page, pageSize, dto.FromModelToCommentResponse), nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToCommentResponse(comment)
	return &resp, nil
}

// Create adds a comment; the title must exist and the review must belong to it
func (s *commentService) Create(ctx context.Context, actor *models.User, titleID, reviewID int64, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if err := PolicyError(policy.AuthenticatedOrReadOnly(actor, policy.Write)); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	if req.Text == "" {
		return nil, invalid("text may not be blank")
	}

	comment := &models.Comment{
		ReviewID:     reviewID,
		AuthorID:     actor.ID,
		AuthoredText: models.AuthoredText{Text: req.Text},
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			// review deleted between the check and the insert
			return nil, notFound("review %d", reviewID)
		}
		return nil, err
	}
	comment.Author = *actor

	resp := dto.FromModelToCommentResponse(comment)
	return &resp, nil
}

// Update edits the text of a comment
func (s *commentService) Update(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := PolicyError(policy.OwnerOrModeratorOrAdminOrReadOnly(actor, policy.Write, comment)); err != nil {
		return nil, err
	}

	if req.Text != nil {
		if *req.Text == "" {
			return nil, invalid("text may not be blank")
		}
		comment.Text = *req.Text
		if err := s.comments.Update(ctx, comment); err != nil {
			return nil, err
		}
	}
	resp := dto.FromModelToCommentResponse(comment)
	return &resp, nil
}

// Delete removes a comment
func (s *commentService) Delete(ctx context.Context, actor *models.User, titleID, reviewID, commentID int64) error {
	comment, err := s.find(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := PolicyError(policy.OwnerOrModeratorOrAdminOrReadOnly(actor, policy.Write, comment)); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("comment %d", commentID)
		}
		return err
	}
	return nil
}

// requireReview checks the title first so a missing title is reported as such
func (s *commentService) requireReview(ctx context.Context, titleID, reviewID int64) error {
	if err := requireTitle(ctx, s.titles, titleID); err != nil {
		return err
	}
	if _, err := s.reviews.GetForTitle(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("review %d for title %d", reviewID, titleID)
		}
		return err
	}
	return nil
}

func (s *commentService) find(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetForReview(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("comment %d", commentID)
		}
		return nil, err
	}
	return comment, nil
}
