package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"voyage/internal/domain"
	"voyage/internal/domain/models"
)

const defaultTokenTTL = 24 * time.Hour

type TokenClaims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and parses HS256 access tokens. Every service shares
// the same secret so a token issued by the user service is accepted everywhere.
type TokenService struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) TokenService {
	return TokenService{Secret: []byte(secret), TTL: ttl}
}

func (s TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s TokenService) Issue(u models.User) (string, time.Time, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := s.now()
	exp := now.Add(ttl)
	claims := TokenClaims{
		UserID: u.ID,
		Role:   string(u.Role),
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, domain.InternalError{Msg: "failed to sign token", Err: err}
	}
	return signed, exp, nil
}

// Parse accepts "Bearer <jwt>" or a bare token.
func (s TokenService) Parse(raw string) (domain.RequestContext, error) {
	token := strings.TrimSpace(raw)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "missing token"}
	}

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "token expired"
		}
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: msg, Err: err}
	}
	if !parsed.Valid || claims.UserID <= 0 {
		return domain.RequestContext{}, domain.UnauthorizedError{Msg: "invalid token"}
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		role = domain.RoleUser
	}
	return domain.RequestContext{
		UserID: domain.ID(claims.UserID),
		Email:  claims.Email,
		Role:   role,
		Token:  token,
	}, nil
}
