package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/notify"

	"gorm.io/gorm"
)

const (
	confirmationSubject = "Your yamdb confirmation code"
	mailTimeout         = 5 * time.Second
)

type AuthService interface {
	// Signup registers the (username, email) pair if it is new and mails a
	// confirmation code. An existing matching pair only gets a fresh code.
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error)
	// IssueConfirmationCode invalidates earlier codes and mails a new one.
	IssueConfirmationCode(ctx context.Context, username string) error
	// Token redeems a confirmation code for an access token.
	Token(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error)
	// Authenticate resolves a bearer token to the current user record.
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type authService struct {
	users    repository.UserRepository
	codes    *ConfirmationCodes
	tokens   TokenIssuer
	mailer   notify.Mailer
	logger   *slog.Logger
	tokenTTL time.Duration
	now      func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	codes *ConfirmationCodes,
	tokens TokenIssuer,
	mailer notify.Mailer,
	logger *slog.Logger,
	tokenTTL time.Duration,
) AuthService {
	return &authService{
		users:    users,
		codes:    codes,
		tokens:   tokens,
		mailer:   mailer,
		logger:   logger,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error) {
	if err := checkUsername(req.Username); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	switch {
	case err == nil:
		if user.Email != req.Email {
			return nil, invalid("username %q is already taken", req.Username)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := ensureEmailFree(ctx, s.users, req.Email, ""); err != nil {
			return nil, err
		}
		user = &models.User{Username: req.Username, Email: req.Email, Role: models.RoleUser}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, duplicateAsConflict(err, "user", "user %q", req.Username)
		}
		s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	default:
		return nil, err
	}

	if err := s.issue(ctx, user); err != nil {
		return nil, err
	}
	return &dto.SignupResponse{Username: user.Username, Email: user.Email}, nil
}

func (s *authService) IssueConfirmationCode(ctx context.Context, username string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("user %q", username)
		}
		return err
	}
	return s.issue(ctx, user)
}

// issue advances the fingerprint first so the mailed code is the only valid one.
func (s *authService) issue(ctx context.Context, user *models.User) error {
	version, err := s.users.AdvanceConfirmation(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("advance confirmation: %w", err)
	}
	user.ConfirmationVersion = version
	code := s.codes.Make(user)
	metrics.ConfirmationCodesIssued.Inc()

	sendCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	body := fmt.Sprintf("Hello %s,\n\nyour confirmation code is: %s\n", user.Username, code)
	if err := s.mailer.Send(sendCtx, user.Email, confirmationSubject, body); err != nil {
		s.logger.WarnContext(ctx, "confirmation mail not delivered",
			"user_id", user.ID,
			"error", err,
		)
	}
	return nil
}

func (s *authService) Token(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user %q", req.Username)
		}
		return nil, err
	}

	if err := s.codes.Check(user, req.ConfirmationCode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	// Only one request can move the version past the value the code was checked against.
	consumed, err := s.users.ConsumeConfirmation(ctx, user.ID, user.ConfirmationVersion, s.now())
	if err != nil {
		return nil, fmt.Errorf("consume confirmation: %w", err)
	}
	if !consumed {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrInvalidCode)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	metrics.TokensIssued.Inc()
	s.logger.InfoContext(ctx, "token issued", "user_id", user.ID)

	return &dto.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokenTTL.Seconds()),
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Resolve(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
		}
		return nil, err
	}
	return user, nil
}

func checkUsername(username string) error {
	if username == models.ReservedUsername {
		return invalid("username %q is reserved", username)
	}
	if !models.ValidUsername(username) {
		return invalid("username %q may contain only letters, digits and @.+-_", username)
	}
	return nil
}

// ensureEmailFree rejects an email held by any user other than exceptID.
func ensureEmailFree(ctx context.Context, users repository.UserRepository, email, exceptID string) error {
	other, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if other.ID != exceptID {
			return invalid("email %q is already registered", email)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}

// duplicateAsConflict maps a lost uniqueness race to ErrConflict and counts it.
func duplicateAsConflict(err error, entity, format string, args ...any) error {
	if errors.Is(err, repository.ErrDuplicate) {
		metrics.UniquenessConflicts.WithLabelValues(entity).Inc()
		return conflict(format+" already exists", args...)
	}
	return err
}
