package service

import (
	"context"
	"errors"
	"fmt"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

// UserService backs the admin user-management endpoints, /users/me and the admin CLI.
// Route-level gating (AdminOnly, authenticated) happens in middleware.
type UserService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error)
	Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Get(ctx context.Context, username string) (*dto.UserResponse, error)
	Update(ctx context.Context, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, username string) error

	// UpdateMe applies a self-service edit. The role field is ignored.
	UpdateMe(ctx context.Context, actor *models.User, req dto.UpdateUserRequest) (*dto.UserResponse, error)

	CreateSuperuser(ctx context.Context, username, email string) (*models.User, error)
	SetRole(ctx context.Context, username string, role models.Role) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error) {
	users, total, err := s.users.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.MapPage(users, total, page, pageSize, dto.FromModelToUserResponse), nil
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	role := models.RoleUser
	if req.Role != "" {
		role = models.Role(req.Role)
	}
	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) create(ctx context.Context, user *models.User) error {
	if err := checkUsername(user.Username); err != nil {
		return err
	}
	if !user.Role.Valid() {
		return invalid("unknown role %q", user.Role)
	}
	if err := s.ensureUsernameFree(ctx, user.Username, ""); err != nil {
		return err
	}
	if err := ensureEmailFree(ctx, s.users, user.Email, ""); err != nil {
		return err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return duplicateAsConflict(err, "user", "user %q", user.Username)
	}
	return nil
}

func (s *userService) Get(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.find(ctx, username)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, username string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.find(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, req)
}

func (s *userService) UpdateMe(ctx context.Context, actor *models.User, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	req.Role = nil
	current := *actor
	return s.apply(ctx, &current, req)
}

func (s *userService) apply(ctx context.Context, user *models.User, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if req.Username != nil && *req.Username != user.Username {
		if err := checkUsername(*req.Username); err != nil {
			return nil, err
		}
		if err := s.ensureUsernameFree(ctx, *req.Username, user.ID); err != nil {
			return nil, err
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if err := ensureEmailFree(ctx, s.users, *req.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		if !role.Valid() {
			return nil, invalid("unknown role %q", role)
		}
		user.Role = role
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, duplicateAsConflict(err, "user", "user %q", user.Username)
	}
	resp := dto.FromModelToUserResponse(user)
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	user, err := s.find(ctx, username)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("user %q", username)
		}
		return err
	}
	return nil
}

func (s *userService) CreateSuperuser(ctx context.Context, username, email string) (*models.User, error) {
	user := &models.User{
		Username:    username,
		Email:       email,
		Role:        models.RoleAdmin,
		IsSuperuser: true,
	}
	if err := s.create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) SetRole(ctx context.Context, username string, role models.Role) error {
	if !role.Valid() {
		return invalid("unknown role %q", role)
	}
	user, err := s.find(ctx, username)
	if err != nil {
		return err
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}

func (s *userService) find(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user %q", username)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ensureUsernameFree(ctx context.Context, username, exceptID string) error {
	other, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if other.ID != exceptID {
			return invalid("username %q is already taken", username)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}
