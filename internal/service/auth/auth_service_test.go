package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository/memory"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

const secret = "test-secret"

func newMemoryService(now func() time.Time) *AuthService {
	return NewAuthService(memory.NewStore().Users(), secret, time.Hour, WithBcryptCost(bcrypt.MinCost), WithClock(now))
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService(time.Now)

	token, user, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "s3cretpass", Password2: "s3cretpass"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, user.IsAdmin)

	actor, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{UserID: user.ID}, actor)

	loginToken, err := svc.Login(ctx, "alice", "s3cretpass")
	require.NoError(t, err)
	actor, err = svc.ParseToken(loginToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.UserID)

	_, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "bob", "s3cretpass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "s3cretpass", Password2: "s3cretpass"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input RegisterInput
		msg   string
	}{
		{"missing username", RegisterInput{Email: "a@b.c", Password: "abcdefgh1", Password2: "abcdefgh1"}, "username is required"},
		{"missing email", RegisterInput{Username: "a", Password: "abcdefgh1", Password2: "abcdefgh1"}, "email is required"},
		{"mismatch", RegisterInput{Username: "a", Email: "a@b.c", Password: "abcdefgh1", Password2: "abcdefgh2"}, "passwords do not match"},
		{"short", RegisterInput{Username: "a", Email: "a@b.c", Password: "abc1", Password2: "abc1"}, "password must be at least 8 characters"},
		{"numeric", RegisterInput{Username: "a", Email: "a@b.c", Password: "12345678", Password2: "12345678"}, "password must not be entirely numeric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			svc := NewAuthService(repo, secret, time.Hour, WithBcryptCost(bcrypt.MinCost))

			_, _, err := svc.Register(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.EqualError(t, err, tt.msg)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_StoreDown(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	svc := NewAuthService(repo, secret, time.Hour, WithBcryptCost(bcrypt.MinCost))

	_, _, err := svc.Register(context.Background(), RegisterInput{Username: "a", Email: "a@b.c", Password: "abcdefgh1", Password2: "abcdefgh1"})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newMemoryService(time.Now)

	require.NoError(t, svc.EnsureAdmin(ctx, "root", "root@example.com", "rootpass1"))
	require.NoError(t, svc.EnsureAdmin(ctx, "root", "root@example.com", "rootpass1"))

	token, err := svc.Login(ctx, "root", "rootpass1")
	require.NoError(t, err)
	actor, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.True(t, actor.IsAdmin)

	assert.Error(t, svc.EnsureAdmin(ctx, "x", "x@example.com", "short"))
}

func TestParseToken_Rejects(t *testing.T) {
	issued := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	now := issued
	svc := newMemoryService(func() time.Time { return now })
	token, err := svc.issueToken(&domain.User{ID: 5, Username: "u"})
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	require.NoError(t, err)

	now = issued.Add(2 * time.Hour)
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "expired")

	now = issued
	other := NewAuthService(nil, "another-secret", time.Hour, WithClock(func() time.Time { return now }))
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "wrong secret")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "5", "exp": issued.Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ParseToken(unsigned)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "alg none")

	_, err = svc.ParseToken("garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("correct horse"))
	assert.Error(t, ValidatePassword("1234567"))
	assert.Error(t, ValidatePassword("123456789"))
}
