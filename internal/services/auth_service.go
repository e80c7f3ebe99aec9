package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"kotoba-server/config"
	"kotoba-server/internal/domain/user"
	"kotoba-server/internal/repository"
	"kotoba-server/internal/transport/httpdto"
	kotoba_errors "kotoba-server/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryMin) * time.Minute,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AccessClaims struct {
	UserID string `json:"sub"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (httpdto.AuthResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || len(in.Password) < 8 {
		return httpdto.AuthResponse{}, kotoba_errors.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return httpdto.AuthResponse{}, err
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         user.RoleUser,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return httpdto.AuthResponse{}, err
	}

	return s.issueResponse(*newUser)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (httpdto.AuthResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	u, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, kotoba_errors.ErrNotFound) {
			return httpdto.AuthResponse{}, kotoba_errors.ErrUnauthorized
		}
		return httpdto.AuthResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return httpdto.AuthResponse{}, kotoba_errors.ErrUnauthorized
	}

	return s.issueResponse(u)
}

func (s *AuthService) issueResponse(u user.User) (httpdto.AuthResponse, error) {
	token, err := s.MintAccessToken(u)
	if err != nil {
		return httpdto.AuthResponse{}, err
	}
	return httpdto.AuthResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.accessTTL.Seconds()),
		User: httpdto.UserInfo{
			ID:        u.ID.String(),
			Name:      u.Name,
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
			Role:      u.Role,
		},
	}, nil
}

func (s *AuthService) MintAccessToken(u user.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: u.ID.String(),
		Name:   u.Name,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ParseAccessToken verifies signature and expiry. Used both by the REST auth
// middleware and by the websocket handshake; there is no other trust path.
func (s *AuthService) ParseAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, kotoba_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, kotoba_errors.ErrUnauthorized
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, kotoba_errors.ErrUnauthorized
	}
	return claims, nil
}
