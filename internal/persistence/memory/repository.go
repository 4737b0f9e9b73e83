// Package memory provides an in-memory Repository for local development and
// tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/srkarthi1982/fitness-tracker/internal/domain"
)

// Repository stores sessions and exercises in process memory.
type Repository struct {
	mu        sync.RWMutex
	sessions  map[string]domain.WorkoutSession
	exercises map[string]domain.WorkoutExercise
}

// NewRepository constructs an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		sessions:  make(map[string]domain.WorkoutSession),
		exercises: make(map[string]domain.WorkoutExercise),
	}
}

// CreateSession implements domain.Repository.
func (r *Repository) CreateSession(ctx context.Context, session domain.WorkoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = session
	return nil
}

// GetSession returns the session when it exists and belongs to the user.
func (r *Repository) GetSession(ctx context.Context, userID, sessionID string) (*domain.WorkoutSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil, nil
	}
	return &session, nil
}

// UpdateSession replaces the stored session row.
func (r *Repository) UpdateSession(ctx context.Context, session domain.WorkoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = session
	return nil
}

// DeleteSessionWithExercises removes the session and all exercises attached
// to it in one step.
func (r *Repository) DeleteSessionWithExercises(ctx context.Context, userID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil
	}

	delete(r.sessions, sessionID)
	for id, exercise := range r.exercises {
		if exercise.SessionID == sessionID {
			delete(r.exercises, id)
		}
	}
	return nil
}

// ListSessionsByUser returns one page of the user's sessions ordered most
// recent workout first.
func (r *Repository) ListSessionsByUser(ctx context.Context, userID string, offset, limit int) ([]domain.WorkoutSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.WorkoutSession, 0)
	for _, session := range r.sessions {
		if session.UserID == userID {
			matched = append(matched, session)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.WorkoutDate.Equal(b.WorkoutDate) {
			return a.WorkoutDate.After(b.WorkoutDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if offset >= len(matched) {
		return []domain.WorkoutSession{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]domain.WorkoutSession, len(matched))
	copy(out, matched)
	return out, nil
}

// CreateExercise implements domain.Repository.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.WorkoutExercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.exercises[exercise.ID] = exercise
	return nil
}

// GetExercise returns the exercise when it exists and belongs to the user.
func (r *Repository) GetExercise(ctx context.Context, userID, exerciseID string) (*domain.WorkoutExercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exercise, ok := r.exercises[exerciseID]
	if !ok || exercise.UserID != userID {
		return nil, nil
	}
	return &exercise, nil
}

// UpdateExercise replaces the stored exercise row.
func (r *Repository) UpdateExercise(ctx context.Context, exercise domain.WorkoutExercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.exercises[exercise.ID] = exercise
	return nil
}

// DeleteExercise removes a single exercise owned by the user.
func (r *Repository) DeleteExercise(ctx context.Context, userID, exerciseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exercise, ok := r.exercises[exerciseID]
	if !ok || exercise.UserID != userID {
		return nil
	}
	delete(r.exercises, exerciseID)
	return nil
}

// ListExercisesBySession returns the session's exercises oldest first.
func (r *Repository) ListExercisesBySession(ctx context.Context, userID, sessionID string) ([]domain.WorkoutExercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.WorkoutExercise, 0)
	for _, exercise := range r.exercises {
		if exercise.SessionID == sessionID && exercise.UserID == userID {
			matched = append(matched, exercise)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return matched, nil
}
