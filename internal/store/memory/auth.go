package memory

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain"
	"github.com/google/uuid"
)

type userRepo struct{ t *tables }

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range r.t.users {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	ensureID(&u.ID)
	u.CreatedAt = r.t.stamp()
	u.UpdatedAt = u.CreatedAt
	r.t.users[u.ID] = copyOf(u)
	return nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.t.users {
		if u.Email == email {
			return copyOf(u), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	return get(r.t.users, "user", id)
}

func (r userRepo) UpdateLoginState(_ context.Context, u *domain.User) error {
	existing, ok := r.t.users[u.ID]
	if !ok {
		return domain.NewNotFound("user", u.ID)
	}
	updated := copyOf(existing)
	updated.FailedLoginCount = u.FailedLoginCount
	updated.LockedUntil = u.LockedUntil
	updated.LastLoginAt = u.LastLoginAt
	updated.UpdatedAt = r.t.stamp()
	r.t.users[u.ID] = updated
	return nil
}

func (r userRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	existing, ok := r.t.users[id]
	if !ok {
		return domain.NewNotFound("user", id)
	}
	updated := copyOf(existing)
	updated.PasswordHash = hash
	updated.UpdatedAt = r.t.stamp()
	r.t.users[id] = updated
	return nil
}

type auditRepo struct{ t *tables }

func (r auditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	ensureID(&entry.ID)
	entry.OccurredAt = r.t.stamp()
	r.t.auditLogs = append(r.t.auditLogs, copyOf(entry))
	return nil
}

// AuditLogs returns a copy of every persisted audit entry in write order.
func (s *Store) AuditLogs() []*domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copies(s.data.auditLogs)
}
