package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepo struct{ db *gorm.DB }

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	ensureID(&u.ID)
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("loading user by email: %w", err)
	}
	return &u, nil
}

func (r userRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return first[domain.User](ctx, r.db, "user", id)
}

func (r userRepo) UpdateLoginState(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Model(u).
		Select("failed_login_count", "locked_until", "last_login_at", "updated_at").
		Updates(u).Error
	if err != nil {
		return fmt.Errorf("updating login state of user %s: %w", u.ID, err)
	}
	return nil
}

func (r userRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return fmt.Errorf("updating password of user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFound("user", id)
	}
	return nil
}

type auditRepo struct{ db *gorm.DB }

func (r auditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	ensureID(&entry.ID)
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	return nil
}
