package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/store"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to multiple failed login attempts")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

const maxFailedAttempts = 5

const lockDuration = 15 * time.Minute

const minPasswordLength = 12

// TokenRevoker remembers logged-out token ids until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService struct {
	store      store.Store
	jwtManager *auth.JWTManager
	revoker    TokenRevoker
	audit      *AuditService
	validate   *validator.CustomValidator
	log        *zap.Logger
	now        func() time.Time
}

// NewAuthService wires staff login. A nil revoker disables logout revocation.
func NewAuthService(st store.Store, jwtManager *auth.JWTManager, revoker TokenRevoker, audit *AuditService, log *zap.Logger) *AuthService {
	return &AuthService{
		store:      st,
		jwtManager: jwtManager,
		revoker:    revoker,
		audit:      audit,
		validate:   validator.NewValidator(),
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string, ip string) (*domain.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		user     *domain.User
		loginErr error
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		user, err = tx.Users().GetByEmail(ctx, email)
		if err != nil {
			if isNotFound(err) {
				// Spend the same bcrypt time as a real check so response
				// timing does not reveal which emails exist.
				_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
				loginErr = ErrInvalidCredentials
				return nil
			}
			return err
		}

		if !user.IsActive {
			loginErr = ErrAccountInactive
			return nil
		}
		if user.IsLocked() {
			loginErr = ErrAccountLocked
			return nil
		}

		now := s.now()
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			// The failed attempt must persist, so the transaction still commits.
			user.RecordFailedLogin(now, maxFailedAttempts, lockDuration)
			loginErr = ErrInvalidCredentials
			return tx.Users().UpdateLoginState(ctx, user)
		}

		user.RecordSuccessfulLogin(now)
		return tx.Users().UpdateLoginState(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if loginErr != nil {
		s.log.Warn("failed login attempt",
			zap.String("email", email),
			zap.String("ip", ip),
			zap.String("reason", loginErr.Error()),
		)
		return nil, loginErr
	}

	pair, err := s.jwtManager.GenerateTokenPair(claimsFor(user))
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	if s.audit != nil {
		s.audit.LogAsync(ctx, AuditEntry{
			Caller:       domain.Caller{UserID: user.ID, Role: user.Role, IPAddress: ip},
			Action:       domain.ActionLogin,
			ResourceType: "user",
			ResourceID:   user.ID,
		})
	}
	s.log.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", ip),
	)

	return pair, nil
}

// RefreshToken issues a new token pair given a valid refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if revoked, err := s.isRevoked(ctx, claims.TokenID); err != nil {
		return nil, err
	} else if revoked {
		return nil, ErrTokenRevoked
	}

	// Re-validate user is still active
	var user *domain.User
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		user, err = tx.Users().GetByID(ctx, claims.UserID)
		return err
	})
	if err != nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.jwtManager.GenerateTokenPair(claimsFor(user))
}

// Authenticate validates an access token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.Claims, error) {
	claims, err := s.jwtManager.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	revoked, err := s.isRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the access token and, when given, the refresh token for the
// rest of their lifetimes.
func (s *AuthService) Logout(ctx context.Context, claims *domain.Claims, refreshToken string, caller domain.Caller) error {
	if s.revoker == nil {
		return nil
	}

	if err := s.revoke(ctx, claims); err != nil {
		return err
	}
	if refreshToken != "" {
		rc, err := s.jwtManager.ValidateRefreshToken(refreshToken)
		if err == nil && rc.UserID == claims.UserID {
			if err := s.revoke(ctx, rc); err != nil {
				return err
			}
		}
	}

	if s.audit != nil {
		s.audit.LogAsync(ctx, AuditEntry{
			Caller:       caller,
			Action:       domain.ActionLogout,
			ResourceType: "user",
			ResourceID:   claims.UserID,
		})
	}
	s.log.Info("user logged out", zap.String("user_id", claims.UserID.String()))
	return nil
}

func (s *AuthService) revoke(ctx context.Context, c *domain.Claims) error {
	if c.TokenID == "" {
		return nil
	}
	ttl := c.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, c.TokenID, ttl); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

func (s *AuthService) isRevoked(ctx context.Context, tokenID string) (bool, error) {
	if s.revoker == nil || tokenID == "" {
		return false, nil
	}
	revoked, err := s.revoker.IsRevoked(ctx, tokenID)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return revoked, nil
}

// CreateUser registers a staff account. Used by the create-user command.
func (s *AuthService) CreateUser(ctx context.Context, email, password, fullName string, role domain.Role, doctorID *uuid.UUID) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var v validation
	v.check(s.validate.ValidateVar(email, "required,email") == nil, "email is invalid")
	v.check(strings.TrimSpace(fullName) != "", "full_name is required")
	v.check(role.IsValid(), "role is invalid")
	v.check(role != domain.RoleDoctor || doctorID != nil, "doctor accounts need a doctor_id")
	if err := validatePasswordStrength(password); err != nil {
		v.check(false, err.Error())
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		DoctorID:     doctorID,
		IsActive:     true,
	}
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		if doctorID != nil {
			if _, err := tx.Doctors().GetByID(ctx, *doctorID); err != nil {
				return err
			}
		}
		return tx.Users().Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user created", zap.String("user_id", u.ID.String()), zap.String("role", string(role)))
	return u, nil
}

// ChangePassword updates a user's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if err := validatePasswordStrength(newPassword); err != nil {
		return &ValidationError{Fields: []string{err.Error()}}
	}

	return s.store.WithTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
			return ErrInvalidCredentials
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		return tx.Users().UpdatePassword(ctx, userID, string(hash))
	})
}

func claimsFor(u *domain.User) *domain.Claims {
	return &domain.Claims{
		UserID:   u.ID,
		Email:    u.Email,
		Role:     u.Role,
		DoctorID: u.DoctorID,
	}
}

func validatePasswordStrength(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}
