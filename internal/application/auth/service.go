package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	loggeradapter "cryptotrack/internal/adapters/logger"
	"cryptotrack/internal/domain/user"
)

const minPasswordLength = 8

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrInvalidEmail = errors.New("invalid email address")
)

// Claims is the JWT payload issued on login.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	users      user.Repository
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
	logger     *loggeradapter.Logger
}

func NewService(users user.Repository, secret string, tokenTTL time.Duration, bcryptCost int, logger *loggeradapter.Logger) *Service {
	if logger == nil {
		logger = loggeradapter.NewNopLogger()
	}
	return &Service{
		users:      users,
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		now:        time.Now,
		logger:     logger.Named("auth"),
	}
}

func (s *Service) Register(ctx context.Context, email, password string) (*user.User, error) {
	email = user.NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := user.NewUser(email, string(hash))
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrUserExists) {
			s.logger.Warn("Registration for existing email", zap.String("email", email))
		} else {
			s.logger.Error("Failed to create user", zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("Registered user", zap.String("user_id", u.ID))
	return u, nil
}

// Login checks the credentials and returns a signed token and its expiry.
// Unknown emails and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", time.Time{}, user.ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Failed login", zap.String("user_id", u.ID))
		return "", time.Time{}, user.ErrInvalidCredentials
	}

	token, expiresAt, err := s.IssueToken(u)
	if err != nil {
		return "", time.Time{}, err
	}

	s.logger.Info("User logged in", zap.String("user_id", u.ID))
	return token, expiresAt, nil
}

func (s *Service) IssueToken(u *user.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)

	claims := Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies a token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}
