package services

import (
	"context"
	"errors"
	"orthoiq-api/internal/models"
	"orthoiq-api/internal/repository"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// AuthService exchanges a verified Farcaster identity for a session token
// and verifies those tokens on later requests. The quick-auth signature
// check itself happens upstream; this service trusts the identity it is
// handed and manages the local user record.
type AuthService interface {
	Authenticate(ctx context.Context, fid int64, username, displayName string) (string, *models.User, error)
	VerifyToken(token string) (*models.User, error)
	VerifyTokenAdmin(token string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

func (s *authService) Authenticate(ctx context.Context, fid int64, username, displayName string) (string, *models.User, error) {
	user, err := s.userRepo.GetByFID(ctx, fid)
	if err != nil {
		return "", nil, err
	}

	if user == nil {
		user = &models.User{
			FID:         fid,
			Username:    username,
			DisplayName: displayName,
			Tier:        models.AuthenticatedTier,
			Role:        "user",
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return "", nil, err
		}
	} else if user.Username != username || user.DisplayName != displayName {
		user.Username = username
		user.DisplayName = displayName
		if err := s.userRepo.Update(ctx, user); err != nil {
			return "", nil, err
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"fid":     user.FID,
		"tier":    string(user.Tier),
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	})

	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, err
	}
	return signed, user, nil
}

func (s *authService) VerifyToken(tokenString string) (*models.User, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	user, err := s.GetUserByID(context.Background(), userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *authService) VerifyTokenAdmin(tokenString string) (*models.User, error) {
	user, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	if user.Role != "admin" && user.Role != "reviewer" {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *authService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *authService) parseClaims(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// WithUserContext stores the authenticated user on the request context.
func WithUserContext(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext retrieves the authenticated user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}
