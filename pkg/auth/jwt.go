// Package auth issues and verifies the HS256 session tokens of clinic staff.
//
// Access and refresh tokens are told apart by their audience. A refresh token
// carries only the subject; role and doctor link are re-read from the user
// record when it is exchanged.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	audienceAPI     = "clinicflow/api"
	audienceRefresh = "clinicflow/refresh"

	clockSkew = 10 * time.Second
)

var (
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenInvalid      = errors.New("token is invalid")
	ErrTokenTypeMismatch = errors.New("wrong token type")
)

type staffClaims struct {
	jwt.RegisteredClaims
	Email    string     `json:"email,omitempty"`
	Role     string     `json:"role,omitempty"`
	DoctorID *uuid.UUID `json:"doctor_id,omitempty"`
}

type JWTManager struct {
	cfg    config.JWTConfig
	secret []byte
	now    func() time.Time
}

func NewJWTManager(cfg config.JWTConfig) *JWTManager {
	return &JWTManager{cfg: cfg, secret: []byte(cfg.Secret), now: time.Now}
}

func (m *JWTManager) GenerateTokenPair(c *domain.Claims) (*domain.TokenPair, error) {
	now := m.now()

	access := m.registered(c.UserID, audienceAPI, now, m.cfg.AccessTokenTTL)
	accessToken, err := m.sign(staffClaims{
		RegisteredClaims: access,
		Email:            c.Email,
		Role:             string(c.Role),
		DoctorID:         c.DoctorID,
	})
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	refreshToken, err := m.sign(staffClaims{
		RegisteredClaims: m.registered(c.UserID, audienceRefresh, now, m.cfg.RefreshTokenTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    access.ExpiresAt.Time,
		TokenType:    "Bearer",
	}, nil
}

func (m *JWTManager) ValidateAccessToken(token string) (*domain.Claims, error) {
	return m.parse(token, audienceAPI)
}

// ValidateRefreshToken returns only the subject, token id and expiry.
func (m *JWTManager) ValidateRefreshToken(token string) (*domain.Claims, error) {
	return m.parse(token, audienceRefresh)
}

func (m *JWTManager) registered(userID uuid.UUID, audience string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    m.cfg.Issuer,
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (m *JWTManager) sign(c staffClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

func (m *JWTManager) parse(token, audience string) (*domain.Claims, error) {
	var sc staffClaims
	_, err := jwt.ParseWithClaims(token, &sc,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return nil, ErrTokenTypeMismatch
	default:
		return nil, ErrTokenInvalid
	}

	userID, err := uuid.Parse(sc.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return &domain.Claims{
		UserID:    userID,
		Email:     sc.Email,
		Role:      domain.Role(sc.Role),
		DoctorID:  sc.DoctorID,
		TokenID:   sc.ID,
		ExpiresAt: sc.ExpiresAt.Time,
	}, nil
}
