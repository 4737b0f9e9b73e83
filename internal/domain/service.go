// Package domain defines the business logic for the fitness tracker.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/srkarthi1982/fitness-tracker/internal/observability"
)

var (
	// ErrSessionNotFound is returned when a session does not exist for the
	// calling user.
	ErrSessionNotFound = errors.New("workout session not found")
	// ErrExerciseNotFound is returned when an exercise does not exist for the
	// calling user.
	ErrExerciseNotFound = errors.New("workout exercise not found")
	// ErrInvalidInput marks validation failures detected before any store
	// access.
	ErrInvalidInput = errors.New("invalid input")
)

// Service orchestrates workout session and exercise workflows on top of a
// Repository.
type Service struct {
	repo Repository
}

// NewService wires a Service to its repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateSession records a new workout session for the user. The workout date
// defaults to the current day when the caller leaves it unset.
func (s *Service) CreateSession(ctx context.Context, input CreateSessionInput) (*WorkoutSession, error) {
	if err := validateSessionNumbers(input.TotalDurationMinutes, input.TotalCalories); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	workoutDate := now
	if input.WorkoutDate != nil {
		workoutDate = input.WorkoutDate.UTC()
	}

	session := WorkoutSession{
		ID:                   uuid.NewString(),
		UserID:               input.UserID,
		Title:                input.Title,
		WorkoutType:          input.WorkoutType,
		Notes:                input.Notes,
		WorkoutDate:          workoutDate,
		StartTime:            input.StartTime,
		EndTime:              input.EndTime,
		TotalDurationMinutes: input.TotalDurationMinutes,
		TotalCalories:        input.TotalCalories,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	observability.RecordSessionWrite("create", now)
	return &session, nil
}

// UpdateSession applies the supplied fields to an existing session and bumps
// its updated timestamp. Fields left nil keep their stored values.
func (s *Service) UpdateSession(ctx context.Context, userID, sessionID string, update SessionUpdate) (*WorkoutSession, error) {
	if err := validateSessionNumbers(update.TotalDurationMinutes, update.TotalCalories); err != nil {
		return nil, err
	}

	session, err := s.repo.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	applySessionUpdate(session, update)
	session.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateSession(ctx, *session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	observability.RecordSessionWrite("update", session.UpdatedAt)
	return session, nil
}

// DeleteSession removes a session together with all of its exercises in a
// single atomic operation and returns the deleted id.
func (s *Service) DeleteSession(ctx context.Context, userID, sessionID string) (string, error) {
	session, err := s.repo.GetSession(ctx, userID, sessionID)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return "", ErrSessionNotFound
	}

	if err := s.repo.DeleteSessionWithExercises(ctx, userID, sessionID); err != nil {
		return "", fmt.Errorf("delete session: %w", err)
	}

	observability.RecordSessionWrite("delete", time.Now().UTC())
	return sessionID, nil
}

// ListSessions returns one page of the user's sessions ordered most recent
// workout first. A zero page or page size falls back to the defaults.
//
// The returned Total counts the items on the page that was fetched, not the
// rows in the table, so the last page reports a short total and every earlier
// page reports the page size.
func (s *Service) ListSessions(ctx context.Context, userID string, page, pageSize int) (*SessionPage, error) {
	if page == 0 {
		page = DefaultPage
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1", ErrInvalidInput)
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, fmt.Errorf("%w: pageSize must be between 1 and %d", ErrInvalidInput, MaxPageSize)
	}

	offset := (page - 1) * pageSize
	items, err := s.repo.ListSessionsByUser(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return &SessionPage{
		Items:    items,
		Total:    len(items),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetSessionWithExercises loads a session and every exercise attached to it,
// oldest exercise first.
func (s *Service) GetSessionWithExercises(ctx context.Context, userID, sessionID string) (*WorkoutSession, []WorkoutExercise, error) {
	session, err := s.repo.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}

	exercises, err := s.repo.ListExercisesBySession(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("list exercises: %w", err)
	}

	return session, exercises, nil
}

// UpsertExercise inserts a new exercise when the input carries no id and
// patches the existing one otherwise. The target session must belong to the
// user in both cases.
func (s *Service) UpsertExercise(ctx context.Context, input ExerciseUpsertInput) (*WorkoutExercise, error) {
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := validateExerciseNumbers(input); err != nil {
		return nil, err
	}

	session, err := s.repo.GetSession(ctx, input.UserID, input.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if input.ID != "" {
		return s.patchExercise(ctx, input)
	}

	now := time.Now().UTC()
	exercise := WorkoutExercise{
		ID:              uuid.NewString(),
		SessionID:       input.SessionID,
		UserID:          input.UserID,
		Name:            input.Name,
		Category:        input.Category,
		Sets:            input.Sets,
		RepsPerSet:      input.RepsPerSet,
		WeightPerRep:    input.WeightPerRep,
		DistanceKm:      input.DistanceKm,
		DurationMinutes: input.DurationMinutes,
		CaloriesBurned:  input.CaloriesBurned,
		Notes:           input.Notes,
		CreatedAt:       now,
	}

	if err := s.repo.CreateExercise(ctx, exercise); err != nil {
		return nil, fmt.Errorf("create exercise: %w", err)
	}

	observability.RecordExerciseWrite("create", now)
	return &exercise, nil
}

func (s *Service) patchExercise(ctx context.Context, input ExerciseUpsertInput) (*WorkoutExercise, error) {
	exercise, err := s.repo.GetExercise(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, fmt.Errorf("load exercise: %w", err)
	}
	if exercise == nil {
		return nil, ErrExerciseNotFound
	}

	exercise.SessionID = input.SessionID
	exercise.Name = input.Name
	applyExerciseUpdate(exercise, input)

	if err := s.repo.UpdateExercise(ctx, *exercise); err != nil {
		return nil, fmt.Errorf("update exercise: %w", err)
	}

	observability.RecordExerciseWrite("update", time.Now().UTC())
	return exercise, nil
}

// DeleteExercise removes a single exercise owned by the user and returns the
// deleted id.
func (s *Service) DeleteExercise(ctx context.Context, userID, exerciseID string) (string, error) {
	exercise, err := s.repo.GetExercise(ctx, userID, exerciseID)
	if err != nil {
		return "", fmt.Errorf("load exercise: %w", err)
	}
	if exercise == nil {
		return "", ErrExerciseNotFound
	}

	if err := s.repo.DeleteExercise(ctx, userID, exerciseID); err != nil {
		return "", fmt.Errorf("delete exercise: %w", err)
	}

	observability.RecordExerciseWrite("delete", time.Now().UTC())
	return exerciseID, nil
}

func applySessionUpdate(session *WorkoutSession, update SessionUpdate) {
	if update.Title != nil {
		session.Title = update.Title
	}
	if update.WorkoutType != nil {
		session.WorkoutType = update.WorkoutType
	}
	if update.Notes != nil {
		session.Notes = update.Notes
	}
	if update.WorkoutDate != nil {
		session.WorkoutDate = update.WorkoutDate.UTC()
	}
	if update.StartTime != nil {
		session.StartTime = update.StartTime
	}
	if update.EndTime != nil {
		session.EndTime = update.EndTime
	}
	if update.TotalDurationMinutes != nil {
		session.TotalDurationMinutes = update.TotalDurationMinutes
	}
	if update.TotalCalories != nil {
		session.TotalCalories = update.TotalCalories
	}
}

func applyExerciseUpdate(exercise *WorkoutExercise, input ExerciseUpsertInput) {
	if input.Category != nil {
		exercise.Category = input.Category
	}
	if input.Sets != nil {
		exercise.Sets = input.Sets
	}
	if input.RepsPerSet != nil {
		exercise.RepsPerSet = input.RepsPerSet
	}
	if input.WeightPerRep != nil {
		exercise.WeightPerRep = input.WeightPerRep
	}
	if input.DistanceKm != nil {
		exercise.DistanceKm = input.DistanceKm
	}
	if input.DurationMinutes != nil {
		exercise.DurationMinutes = input.DurationMinutes
	}
	if input.CaloriesBurned != nil {
		exercise.CaloriesBurned = input.CaloriesBurned
	}
	if input.Notes != nil {
		exercise.Notes = input.Notes
	}
}

func validateSessionNumbers(durationMinutes, calories *int) error {
	if durationMinutes != nil && *durationMinutes <= 0 {
		return fmt.Errorf("%w: totalDurationMinutes must be > 0", ErrInvalidInput)
	}
	if calories != nil && *calories < 0 {
		return fmt.Errorf("%w: totalCalories must be >= 0", ErrInvalidInput)
	}
	return nil
}

func validateExerciseNumbers(input ExerciseUpsertInput) error {
	if input.Sets != nil && *input.Sets <= 0 {
		return fmt.Errorf("%w: sets must be > 0", ErrInvalidInput)
	}
	if input.RepsPerSet != nil && *input.RepsPerSet <= 0 {
		return fmt.Errorf("%w: repsPerSet must be > 0", ErrInvalidInput)
	}
	if input.WeightPerRep != nil && *input.WeightPerRep <= 0 {
		return fmt.Errorf("%w: weightPerRep must be > 0", ErrInvalidInput)
	}
	if input.DistanceKm != nil && *input.DistanceKm <= 0 {
		return fmt.Errorf("%w: distanceKm must be > 0", ErrInvalidInput)
	}
	if input.DurationMinutes != nil && *input.DurationMinutes <= 0 {
		return fmt.Errorf("%w: durationMinutes must be > 0", ErrInvalidInput)
	}
	if input.CaloriesBurned != nil && *input.CaloriesBurned < 0 {
		return fmt.Errorf("%w: caloriesBurned must be >= 0", ErrInvalidInput)
	}
	return nil
}
