package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/srkarthi1982/fitness-tracker/internal/domain"
)

// Repository provides Postgres-backed persistence for workout sessions and
// exercises.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSession persists a new session row.
func (r *Repository) CreateSession(ctx context.Context, session domain.WorkoutSession) error {
	const stmt = `INSERT INTO workout_sessions (id, user_id, title, workout_type, notes, workout_date, start_time, end_time, total_duration_minutes, total_calories, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err := r.pool.Exec(ctx, stmt,
		session.ID,
		session.UserID,
		session.Title,
		session.WorkoutType,
		session.Notes,
		session.WorkoutDate,
		session.StartTime,
		session.EndTime,
		session.TotalDurationMinutes,
		session.TotalCalories,
		session.CreatedAt,
		session.UpdatedAt,
	)
	return err
}

// GetSession retrieves a session by id scoped to the user.
func (r *Repository) GetSession(ctx context.Context, userID, sessionID string) (*domain.WorkoutSession, error) {
	const query = `SELECT id, user_id, title, workout_type, notes, workout_date, start_time, end_time, total_duration_minutes, total_calories, created_at, updated_at
        FROM workout_sessions WHERE id=$1 AND user_id=$2`

	row := r.pool.QueryRow(ctx, query, sessionID, userID)
	var session domain.WorkoutSession
	if err := row.Scan(&session.ID, &session.UserID, &session.Title, &session.WorkoutType, &session.Notes, &session.WorkoutDate, &session.StartTime, &session.EndTime, &session.TotalDurationMinutes, &session.TotalCalories, &session.CreatedAt, &session.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// UpdateSession rewrites the mutable columns of a session row.
func (r *Repository) UpdateSession(ctx context.Context, session domain.WorkoutSession) error {
	const stmt = `UPDATE workout_sessions
        SET title=$1, workout_type=$2, notes=$3, workout_date=$4, start_time=$5, end_time=$6, total_duration_minutes=$7, total_calories=$8, updated_at=$9
        WHERE id=$10 AND user_id=$11`

	_, err := r.pool.Exec(ctx, stmt,
		session.Title,
		session.WorkoutType,
		session.Notes,
		session.WorkoutDate,
		session.StartTime,
		session.EndTime,
		session.TotalDurationMinutes,
		session.TotalCalories,
		session.UpdatedAt,
		session.ID,
		session.UserID,
	)
	return err
}

// DeleteSessionWithExercises removes the session and its exercises inside a
// single transaction, so a failure leaves both tables untouched.
func (r *Repository) DeleteSessionWithExercises(ctx context.Context, userID, sessionID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM workout_exercises WHERE session_id=$1 AND user_id=$2`, sessionID, userID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM workout_sessions WHERE id=$1 AND user_id=$2`, sessionID, userID); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	return err
}

// ListSessionsByUser returns one page of the user's sessions ordered most
// recent workout first.
func (r *Repository) ListSessionsByUser(ctx context.Context, userID string, offset, limit int) ([]domain.WorkoutSession, error) {
	const query = `SELECT id, user_id, title, workout_type, notes, workout_date, start_time, end_time, total_duration_minutes, total_calories, created_at, updated_at
        FROM workout_sessions WHERE user_id=$1
        ORDER BY workout_date DESC, created_at DESC, id DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.WorkoutSession, 0, limit)
	for rows.Next() {
		var session domain.WorkoutSession
		if err := rows.Scan(&session.ID, &session.UserID, &session.Title, &session.WorkoutType, &session.Notes, &session.WorkoutDate, &session.StartTime, &session.EndTime, &session.TotalDurationMinutes, &session.TotalCalories, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// CreateExercise persists a new exercise row.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.WorkoutExercise) error {
	const stmt = `INSERT INTO workout_exercises (id, session_id, user_id, name, category, sets, reps_per_set, weight_per_rep, distance_km, duration_minutes, calories_burned, notes, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	_, err := r.pool.Exec(ctx, stmt,
		exercise.ID,
		exercise.SessionID,
		exercise.UserID,
		exercise.Name,
		exercise.Category,
		exercise.Sets,
		exercise.RepsPerSet,
		exercise.WeightPerRep,
		exercise.DistanceKm,
		exercise.DurationMinutes,
		exercise.CaloriesBurned,
		exercise.Notes,
		exercise.CreatedAt,
	)
	return err
}

// GetExercise retrieves an exercise by id scoped to the user.
func (r *Repository) GetExercise(ctx context.Context, userID, exerciseID string) (*domain.WorkoutExercise, error) {
	const query = `SELECT id, session_id, user_id, name, category, sets, reps_per_set, weight_per_rep, distance_km, duration_minutes, calories_burned, notes, created_at
        FROM workout_exercises WHERE id=$1 AND user_id=$2`

	row := r.pool.QueryRow(ctx, query, exerciseID, userID)
	var exercise domain.WorkoutExercise
	if err := row.Scan(&exercise.ID, &exercise.SessionID, &exercise.UserID, &exercise.Name, &exercise.Category, &exercise.Sets, &exercise.RepsPerSet, &exercise.WeightPerRep, &exercise.DistanceKm, &exercise.DurationMinutes, &exercise.CaloriesBurned, &exercise.Notes, &exercise.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &exercise, nil
}

// UpdateExercise rewrites the mutable columns of an exercise row.
func (r *Repository) UpdateExercise(ctx context.Context, exercise domain.WorkoutExercise) error {
	const stmt = `UPDATE workout_exercises
        SET session_id=$1, name=$2, category=$3, sets=$4, reps_per_set=$5, weight_per_rep=$6, distance_km=$7, duration_minutes=$8, calories_burned=$9, notes=$10
        WHERE id=$11 AND user_id=$12`

	_, err := r.pool.Exec(ctx, stmt,
		exercise.SessionID,
		exercise.Name,
		exercise.Category,
		exercise.Sets,
		exercise.RepsPerSet,
		exercise.WeightPerRep,
		exercise.DistanceKm,
		exercise.DurationMinutes,
		exercise.CaloriesBurned,
		exercise.Notes,
		exercise.ID,
		exercise.UserID,
	)
	return err
}

// DeleteExercise removes a single exercise owned by the user.
func (r *Repository) DeleteExercise(ctx context.Context, userID, exerciseID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM workout_exercises WHERE id=$1 AND user_id=$2`, exerciseID, userID)
	return err
}

// ListExercisesBySession returns the session's exercises oldest first.
func (r *Repository) ListExercisesBySession(ctx context.Context, userID, sessionID string) ([]domain.WorkoutExercise, error) {
	const query = `SELECT id, session_id, user_id, name, category, sets, reps_per_set, weight_per_rep, distance_km, duration_minutes, calories_burned, notes, created_at
        FROM workout_exercises WHERE session_id=$1 AND user_id=$2
        ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.WorkoutExercise, 0)
	for rows.Next() {
		var exercise domain.WorkoutExercise
		if err := rows.Scan(&exercise.ID, &exercise.SessionID, &exercise.UserID, &exercise.Name, &exercise.Category, &exercise.Sets, &exercise.RepsPerSet, &exercise.WeightPerRep, &exercise.DistanceKm, &exercise.DurationMinutes, &exercise.CaloriesBurned, &exercise.Notes, &exercise.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
