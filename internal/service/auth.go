package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cleanslate/cleanslate-api-go/internal/domain"
	"github.com/cleanslate/cleanslate-api-go/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService implements the single-user demo login: one account persisted
// next to the state snapshot, bcrypt for the password, HMAC-signed JWT
// access tokens for the mutating routes.
type AuthService struct {
	creds     port.CredentialsStore
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(creds port.CredentialsStore, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		creds:     creds,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		logger:    logger,
	}
}

// Register creates the account. A second registration for a different
// email is a conflict — this is a single-user product.
func (s *AuthService) Register(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	_, span := tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	if req.Email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "required"}
	}
	if len(req.Password) < 8 {
		return nil, &domain.ErrValidation{Field: "password", Message: "must be at least 8 characters"}
	}

	if existing, ok, err := s.creds.LoadCredentials(); err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	} else if ok && !strings.EqualFold(existing.Email, req.Email) {
		return nil, &domain.ErrConflict{Message: "an account is already registered"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.creds.SaveCredentials(domain.Credentials{
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		Name:         req.Name,
	}); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}

	s.logger.Info("account registered", zap.String("email", req.Email))
	return s.issueToken(req.Email)
}

// Login verifies the password and issues an access token.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error) {
	_, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	creds, ok, err := s.creds.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if !ok || !strings.EqualFold(creds.Email, req.Email) {
		return nil, &domain.ErrUnauthorized{Message: "invalid email or password"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login failed", zap.String("email", req.Email))
		return nil, &domain.ErrUnauthorized{Message: "invalid email or password"}
	}

	return s.issueToken(creds.Email)
}

// JWTClaims are the custom claims carried by access tokens.
type JWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ValidateAccessToken parses and verifies an access token. Used by the
// auth middleware.
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}
	return claims, nil
}

func (s *AuthService) issueToken(email string) (*domain.TokenResponse, error) {
	now := time.Now()
	claims := JWTClaims{
		Email: strings.ToLower(email),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strings.ToLower(email),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "cleanslate-api",
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTTL.Seconds()),
	}, nil
}
