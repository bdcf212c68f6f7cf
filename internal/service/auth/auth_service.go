package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLen = 8

type AuthUseCase interface {
	Register(ctx context.Context, input RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	ParseToken(token string) (domain.Actor, error)
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Password2 string
}

// AuthService issues HS256 access tokens carrying the user id and admin flag.
type AuthService struct {
	users      repository.UserRepository
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

type AuthServiceOption func(*AuthService)

func WithBcryptCost(cost int) AuthServiceOption {
	return func(s *AuthService) {
		s.bcryptCost = cost
	}
}

func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		s.now = now
	}
}

func NewAuthService(users repository.UserRepository, jwtSecret string, tokenTTL time.Duration, opts ...AuthServiceOption) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	s := &AuthService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (string, *domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" {
		return "", nil, domain.NewValidationError("username is required")
	}
	if email == "" {
		return "", nil, domain.NewValidationError("email is required")
	}
	if input.Password != input.Password2 {
		return "", nil, domain.NewValidationError("passwords do not match")
	}
	if err := ValidatePassword(input.Password); err != nil {
		return "", nil, err
	}

	user, err := s.createUser(ctx, username, email, input.Password, false)
	if err != nil {
		return "", nil, err
	}
	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// EnsureAdmin creates an administrator account unless the username or email is already taken.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if err := ValidatePassword(password); err != nil {
		return fmt.Errorf("admin password: %w", err)
	}
	_, err := s.createUser(ctx, username, email, password, true)
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	return err
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", &domain.UnavailableError{Op: "login", Err: err}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}
	return s.issueToken(user)
}

func (s *AuthService) ParseToken(token string) (domain.Actor, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return domain.Actor{}, domain.ErrInvalidCredentials
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return domain.Actor{}, domain.ErrInvalidCredentials
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return domain.Actor{}, domain.ErrInvalidCredentials
	}
	isAdmin, _ := claims["admin"].(bool)
	return domain.Actor{UserID: id, IsAdmin: isAdmin}, nil
}

func (s *AuthService) createUser(ctx context.Context, username, email, password string, isAdmin bool) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, &domain.UnavailableError{Op: "create_user", Err: err}
	}
	return user, nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"admin":    user.IsAdmin,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidatePassword enforces the minimum length and rejects purely numeric passwords.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLen {
		return domain.NewValidationError(fmt.Sprintf("password must be at least %d characters", MinPasswordLen))
	}
	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return domain.NewValidationError("password must not be entirely numeric")
	}
	return nil
}

var _ AuthUseCase = (*AuthService)(nil)
