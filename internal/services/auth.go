package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/productivityhub/backend/internal/pkg/errors"
	"github.com/productivityhub/backend/internal/pkg/logger"
	"github.com/productivityhub/backend/internal/requestdata"
)

// AuthService verifies bearer tokens issued by the identity service
// and installs the validated tenant/user identity in the request
// context. Token issuance and credential storage live outside this
// backend; GenerateToken exists for tooling and tests.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GenerateToken(tenantID, userID uuid.UUID, userName string, ttl time.Duration) (string, error)
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
}

func NewAuthService(log *logger.Logger, jwtSecretKey string) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{log: serviceLog, jwtSecretKey: jwtSecretKey}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ctx, fmt.Errorf("%w: invalid token", apperrors.ErrUnauthorized)
	}

	tenantID, err := claimUUID(claims, "tenant_id")
	if err != nil {
		return ctx, err
	}
	userID, err := claimUUID(claims, "user_id")
	if err != nil {
		return ctx, err
	}
	userName, _ := claims["user_name"].(string)

	rd := &requestdata.RequestData{
		TenantID:    tenantID,
		UserID:      userID,
		UserName:    userName,
		TokenString: tokenString,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GenerateToken(tenantID, userID uuid.UUID, userName string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"tenant_id": tenantID.String(),
		"user_id":   userID.String(),
		"user_name": userName,
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func claimUUID(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, ok := claims[key].(string)
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("%w: missing %s claim", apperrors.ErrUnauthorized, key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed %s claim", apperrors.ErrUnauthorized, key)
	}
	return id, nil
}
