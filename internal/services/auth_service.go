package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
	"github.com/AnshRaj112/emotion-tracker-backend/internal/repository"
	"github.com/AnshRaj112/emotion-tracker-backend/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Claims is the bearer token payload: the login id and display name.
type Claims struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	ID       string `json:"id"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users  repository.UserRepository
	secret []byte
	expire time.Duration
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, secret string, expire time.Duration, log *zap.SugaredLogger) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		expire: expire,
		log:    log,
		now:    time.Now,
	}
}

// Register creates a user with a hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	var verrs utils.ValidationErrors
	if verr := utils.ValidateLoginID(in.ID); verr != nil {
		verrs = append(verrs, verr)
	}
	if verr := utils.ValidatePassword(in.Password); verr != nil {
		verrs = append(verrs, verr)
	}
	verrs.Required("name", in.Name)
	if err := verrs.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrValidation, err)
	}

	_, err := s.users.FindByLoginID(ctx, in.ID)
	if err == nil {
		return nil, models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		LoginID:   in.ID,
		Password:  hash,
		Name:      in.Name,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Infow("user registered", "login_id", user.LoginID)
	return user, nil
}

// Authenticate checks credentials and issues a token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, loginID, password string) (*LoginResult, error) {
	user, err := s.users.FindByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := utils.VerifyPassword(password, user.Password)
	if err != nil {
		s.log.Warnw("stored password hash is unreadable", "login_id", loginID, "error", err)
		return nil, models.ErrUnauthorized
	}
	if !ok {
		return nil, models.ErrUnauthorized
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ID:   user.LoginID,
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expire)),
		},
	})
	return token.SignedString(s.secret)
}

// ParseToken verifies signature and expiry.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		return nil, models.ErrInvalidToken
	}
	if !token.Valid || claims.ID == "" {
		return nil, models.ErrInvalidToken
	}
	return claims, nil
}

// CurrentUser resolves a token to the user it was issued for.
func (s *AuthService) CurrentUser(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByLoginID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
