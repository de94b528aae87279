package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type authFixture struct {
	users  *MockUserRepository
	mailer *MockMailer
	codes  *ConfirmationCodes
	tokens TokenIssuer
	svc    AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	codes, err := NewConfirmationCodes(testSecret, 72*time.Hour)
	require.NoError(t, err)

	f := &authFixture{
		users:  new(MockUserRepository),
		mailer: new(MockMailer),
		codes:  codes,
		tokens: NewJWTIssuer(testSecret, time.Hour),
	}
	f.svc = NewAuthService(f.users, f.codes, f.tokens, f.mailer, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour)
	return f
}

func TestSignup_NewUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	before := testutil.ToFloat64(metrics.ConfirmationCodesIssued)

	f.users.On("FindByUsername", ctx, "alice").Return(nil, gorm.ErrRecordNotFound)
	f.users.On("FindByEmail", ctx, "alice@example.com").Return(nil, gorm.ErrRecordNotFound)
	f.users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "alice" && u.Role == models.RoleUser
	})).Return(nil)
	f.users.On("AdvanceConfirmation", ctx, "generated-id").Return(int64(1), nil)

	var mailed string
	f.mailer.On("Send", mock.Anything, "alice@example.com", confirmationSubject, mock.Anything).
		Run(func(args mock.Arguments) { mailed = args.String(3) }).
		Return(nil)

	resp, err := f.svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "alice@example.com", resp.Email)

	_, code, found := strings.Cut(mailed, "confirmation code is: ")
	require.True(t, found)
	issued := &models.User{ID: "generated-id", Username: "alice", Email: "alice@example.com", ConfirmationVersion: 1}
	assert.NoError(t, f.codes.Check(issued, strings.TrimSpace(code)))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ConfirmationCodesIssued))
	f.users.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func TestSignup_ExistingPairReissues(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("FindByUsername", ctx, "alice").Return(clone(alice), nil)
	f.users.On("AdvanceConfirmation", ctx, alice.ID).Return(int64(7), nil)
	f.mailer.On("Send", mock.Anything, alice.Email, confirmationSubject, mock.Anything).Return(nil)

	_, err := f.svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: alice.Email})
	require.NoError(t, err)
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.users.AssertExpectations(t)
}

func TestSignup_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("reserved username", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Signup(ctx, dto.SignupRequest{Username: "me", Email: "me@example.com"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("invalid characters", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Signup(ctx, dto.SignupRequest{Username: "al ice", Email: "a@example.com"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("username taken by another email", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByUsername", ctx, "alice").Return(clone(alice), nil)
		_, err := f.svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: "new@example.com"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("email taken by another username", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByUsername", ctx, "carol").Return(nil, gorm.ErrRecordNotFound)
		f.users.On("FindByEmail", ctx, alice.Email).Return(clone(alice), nil)
		_, err := f.svc.Signup(ctx, dto.SignupRequest{Username: "carol", Email: alice.Email})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("lost insert race", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByUsername", ctx, "carol").Return(nil, gorm.ErrRecordNotFound)
		f.users.On("FindByEmail", ctx, "carol@example.com").Return(nil, gorm.ErrRecordNotFound)
		f.users.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)
		_, err := f.svc.Signup(ctx, dto.SignupRequest{Username: "carol", Email: "carol@example.com"})
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestSignup_MailFailureNotSurfaced(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("FindByUsername", ctx, "alice").Return(clone(alice), nil)
	f.users.On("AdvanceConfirmation", ctx, alice.ID).Return(int64(2), nil)
	f.mailer.On("Send", mock.Anything, alice.Email, confirmationSubject, mock.Anything).Return(errors.New("smtp down"))

	_, err := f.svc.Signup(ctx, dto.SignupRequest{Username: "alice", Email: alice.Email})
	assert.NoError(t, err)
}

func TestIssueConfirmationCode_UnknownUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.users.On("FindByUsername", ctx, "ghost").Return(nil, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, f.svc.IssueConfirmationCode(ctx, "ghost"), ErrNotFound)
}

func TestToken_Success(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	before := testutil.ToFloat64(metrics.TokensIssued)

	user := clone(alice)
	user.ConfirmationVersion = 3
	code := f.codes.Make(user)

	f.users.On("FindByUsername", ctx, "alice").Return(user, nil)
	f.users.On("ConsumeConfirmation", ctx, alice.ID, int64(3), mock.Anything).Return(true, nil)

	resp, err := f.svc.Token(ctx, dto.TokenRequest{Username: "alice", ConfirmationCode: code})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	userID, err := f.tokens.Resolve(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, userID)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.TokensIssued))
}

func TestToken_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown username", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByUsername", ctx, "ghost").Return(nil, gorm.ErrRecordNotFound)
		_, err := f.svc.Token(ctx, dto.TokenRequest{Username: "ghost", ConfirmationCode: "000000"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("malformed code", func(t *testing.T) {
		f := newAuthFixture(t)
		f.users.On("FindByUsername", ctx, "alice").Return(clone(alice), nil)
		_, err := f.svc.Token(ctx, dto.TokenRequest{Username: "alice", ConfirmationCode: "000000"})
		assert.ErrorIs(t, err, ErrValidation)
		f.users.AssertNotCalled(t, "ConsumeConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("superseded code", func(t *testing.T) {
		f := newAuthFixture(t)
		old := clone(alice)
		old.ConfirmationVersion = 3
		code := f.codes.Make(old)

		current := clone(alice)
		current.ConfirmationVersion = 4
		f.users.On("FindByUsername", ctx, "alice").Return(current, nil)

		_, err := f.svc.Token(ctx, dto.TokenRequest{Username: "alice", ConfirmationCode: code})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("redeemed concurrently", func(t *testing.T) {
		f := newAuthFixture(t)
		user := clone(alice)
		user.ConfirmationVersion = 5
		code := f.codes.Make(user)

		f.users.On("FindByUsername", ctx, "alice").Return(user, nil)
		f.users.On("ConsumeConfirmation", ctx, alice.ID, int64(5), mock.Anything).Return(false, nil)

		_, err := f.svc.Token(ctx, dto.TokenRequest{Username: "alice", ConfirmationCode: code})
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrInvalidCode)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		f := newAuthFixture(t)
		token, err := f.tokens.Issue(alice)
		require.NoError(t, err)
		f.users.On("FindByID", ctx, alice.ID).Return(clone(alice), nil)

		user, err := f.svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("invalid token", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Authenticate(ctx, "garbage")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("deleted user", func(t *testing.T) {
		f := newAuthFixture(t)
		token, err := f.tokens.Issue(bob)
		require.NoError(t, err)
		f.users.On("FindByID", ctx, bob.ID).Return(nil, gorm.ErrRecordNotFound)

		_, err = f.svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}
