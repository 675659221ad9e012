package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserLockout(t *testing.T) {
	now := time.Now()
	u := &User{}

	for i := 0; i < 4; i++ {
		u.RecordFailedLogin(now, 5, 15*time.Minute)
	}
	assert.False(t, u.IsLocked())
	assert.Equal(t, 4, u.FailedLoginCount)

	u.RecordFailedLogin(now, 5, 15*time.Minute)
	assert.True(t, u.IsLocked())

	u.RecordSuccessfulLogin(now)
	assert.False(t, u.IsLocked())
	assert.Equal(t, 0, u.FailedLoginCount)
	assert.NotNil(t, u.LastLoginAt)
}

func TestTypedErrors(t *testing.T) {
	id := uuid.New()

	err := error(NewNotFound("visit", id))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "visit "+id.String()+" not found", err.Error())

	err = &InvalidStateError{Resource: "appointment", ID: id, From: "COMPLETED", To: "COMPLETED"}
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "cannot move from COMPLETED to COMPLETED")
}

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RolePharmacist.IsValid())
	assert.False(t, Role("patient").IsValid())
}
