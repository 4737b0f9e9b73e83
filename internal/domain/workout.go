package domain

import (
	"context"
	"time"
)

// Pagination bounds for listing sessions.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// WorkoutSession is the canonical session record stored in PostgreSQL.
type WorkoutSession struct {
	ID                   string
	UserID               string
	Title                *string
	WorkoutType          *string
	Notes                *string
	WorkoutDate          time.Time
	StartTime            *time.Time
	EndTime              *time.Time
	TotalDurationMinutes *int
	TotalCalories        *int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// WorkoutExercise is a single exercise performed within a session. It always
// belongs to the same user as its parent session.
type WorkoutExercise struct {
	ID              string
	SessionID       string
	UserID          string
	Name            string
	Category        *string
	Sets            *int
	RepsPerSet      *int
	WeightPerRep    *float64
	DistanceKm      *float64
	DurationMinutes *float64
	CaloriesBurned  *float64
	Notes           *string
	CreatedAt       time.Time
}

// CreateSessionInput captures the payload accepted when recording a session.
// Nil fields stay unset on the stored record.
type CreateSessionInput struct {
	UserID               string
	Title                *string
	WorkoutType          *string
	Notes                *string
	WorkoutDate          *time.Time
	StartTime            *time.Time
	EndTime              *time.Time
	TotalDurationMinutes *int
	TotalCalories        *int
}

// SessionUpdate carries the optional fields of a session patch. Nil fields
// leave the stored value unchanged.
type SessionUpdate struct {
	Title                *string
	WorkoutType          *string
	Notes                *string
	WorkoutDate          *time.Time
	StartTime            *time.Time
	EndTime              *time.Time
	TotalDurationMinutes *int
	TotalCalories        *int
}

// ExerciseUpsertInput captures the payload for creating or patching an
// exercise. An empty ID inserts a fresh record; a non-empty ID patches the
// existing one. SessionID and Name are always written, nil optional fields
// leave the stored values unchanged.
type ExerciseUpsertInput struct {
	ID              string
	SessionID       string
	UserID          string
	Name            string
	Category        *string
	Sets            *int
	RepsPerSet      *int
	WeightPerRep    *float64
	DistanceKm      *float64
	DurationMinutes *float64
	CaloriesBurned  *float64
	Notes           *string
}

// SessionPage is one page of a user's sessions. Total counts the items on
// this page, not the full table; callers paging forward should keep
// requesting until a short page comes back.
type SessionPage struct {
	Items    []WorkoutSession
	Total    int
	Page     int
	PageSize int
}

// Repository captures persistence operations for sessions and exercises.
// Lookup methods return (nil, nil) when no row matches the id/user pair, so
// foreign-owned rows are indistinguishable from absent ones.
type Repository interface {
	CreateSession(ctx context.Context, session WorkoutSession) error
	GetSession(ctx context.Context, userID, sessionID string) (*WorkoutSession, error)
	UpdateSession(ctx context.Context, session WorkoutSession) error
	DeleteSessionWithExercises(ctx context.Context, userID, sessionID string) error
	ListSessionsByUser(ctx context.Context, userID string, offset, limit int) ([]WorkoutSession, error)

	CreateExercise(ctx context.Context, exercise WorkoutExercise) error
	GetExercise(ctx context.Context, userID, exerciseID string) (*WorkoutExercise, error)
	UpdateExercise(ctx context.Context, exercise WorkoutExercise) error
	DeleteExercise(ctx context.Context, userID, exerciseID string) error
	ListExercisesBySession(ctx context.Context, userID, sessionID string) ([]WorkoutExercise, error)
}
