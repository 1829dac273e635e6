package domain

import (
	"context"
	"errors"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrHabitConflict = errors.New("habit version conflict")
	ErrUnauthorized  = errors.New("unauthorized")
)

type HabitRepository interface {
	// Create persists a new habit definition.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all habits owned by a user.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update modifies an existing habit. Implementations must apply optimistic
	// locking on Version and return ErrHabitConflict on a stale write.
	Update(ctx context.Context, habit *Habit) error

	// Delete removes a habit and all of its completions.
	Delete(ctx context.Context, id string) error

	// UpdateStreaks persists the memoized streak counters without touching the
	// rest of the record. Only the streak worker calls this.
	UpdateStreaks(ctx context.Context, id string, current, highest int) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
