// Package api exposes HTTP handlers for the fitness tracker.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/srkarthi1982/fitness-tracker/internal/auth"
	"github.com/srkarthi1982/fitness-tracker/internal/domain"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/sessions", h.sessions)
	mux.HandleFunc("/v1/sessions/", h.sessionByID)
	mux.HandleFunc("/v1/exercises", h.exercises)
	mux.HandleFunc("/v1/exercises/", h.exerciseByID)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) sessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createSession(w, r)
	case http.MethodGet:
		h.listSessions(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "unsupported method")
	}
}

func (h *Handler) sessionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "missing session id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getSessionWithExercises(w, r, id)
	case http.MethodPatch:
		h.updateSession(w, r, id)
	case http.MethodDelete:
		h.deleteSession(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "unsupported method")
	}
}

func (h *Handler) exercises(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.upsertExercise(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "unsupported method")
	}
}

func (h *Handler) exerciseByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/exercises/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "missing exercise id")
		return
	}

	switch r.Method {
	case http.MethodDelete:
		h.deleteExercise(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "unsupported method")
	}
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	session, err := h.service.CreateSession(r.Context(), domain.CreateSessionInput{
		UserID:               claims.Subject,
		Title:                req.Title,
		WorkoutType:          req.WorkoutType,
		Notes:                req.Notes,
		WorkoutDate:          req.WorkoutDate,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		TotalDurationMinutes: req.TotalDurationMinutes,
		TotalCalories:        req.TotalCalories,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusCreated, toSessionView(*session))
}

func (h *Handler) updateSession(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	var req UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	session, err := h.service.UpdateSession(r.Context(), claims.Subject, id, domain.SessionUpdate{
		Title:                req.Title,
		WorkoutType:          req.WorkoutType,
		Notes:                req.Notes,
		WorkoutDate:          req.WorkoutDate,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		TotalDurationMinutes: req.TotalDurationMinutes,
		TotalCalories:        req.TotalCalories,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, toSessionView(*session))
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	deletedID, err := h.service.DeleteSession(r.Context(), claims.Subject, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, DeleteResponse{ID: deletedID})
}

// listSessions reports total as the count of items on the returned page, not
// the full row count; clients page forward until a short page comes back.
func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	page, err := positiveIntParam(r, "page")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	pageSize, err := positiveIntParam(r, "pageSize")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	result, err := h.service.ListSessions(r.Context(), claims.Subject, page, pageSize)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]SessionView, 0, len(result.Items))
	for _, session := range result.Items {
		items = append(items, toSessionView(session))
	}

	writeData(w, http.StatusOK, ListSessionsResponse{
		Items:    items,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

func (h *Handler) getSessionWithExercises(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	session, exercises, err := h.service.GetSessionWithExercises(r.Context(), claims.Subject, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]ExerciseView, 0, len(exercises))
	for _, exercise := range exercises {
		views = append(views, toExerciseView(exercise))
	}

	writeData(w, http.StatusOK, SessionDetailResponse{
		Session:   toSessionView(*session),
		Exercises: views,
	})
}

func (h *Handler) upsertExercise(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	var req UpsertExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	exercise, err := h.service.UpsertExercise(r.Context(), domain.ExerciseUpsertInput{
		ID:              req.ID,
		SessionID:       req.SessionID,
		UserID:          claims.Subject,
		Name:            req.Name,
		Category:        req.Category,
		Sets:            req.Sets,
		RepsPerSet:      req.RepsPerSet,
		WeightPerRep:    req.WeightPerRep,
		DistanceKm:      req.DistanceKm,
		DurationMinutes: req.DurationMinutes,
		CaloriesBurned:  req.CaloriesBurned,
		Notes:           req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, toExerciseView(*exercise))
}

func (h *Handler) deleteExercise(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	deletedID, err := h.service.DeleteExercise(r.Context(), claims.Subject, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeData(w, http.StatusOK, DeleteResponse{ID: deletedID})
}

// CreateSessionRequest is the payload for POST /v1/sessions. Every field is
// optional; the server fills identity and timestamps.
type CreateSessionRequest struct {
	Title                *string    `json:"title"`
	WorkoutType          *string    `json:"workoutType"`
	Notes                *string    `json:"notes"`
	WorkoutDate          *time.Time `json:"workoutDate"`
	StartTime            *time.Time `json:"startTime"`
	EndTime              *time.Time `json:"endTime"`
	TotalDurationMinutes *int       `json:"totalDurationMinutes"`
	TotalCalories        *int       `json:"totalCalories"`
}

// Validate ensures request correctness.
func (r CreateSessionRequest) Validate() error {
	return validateSessionFields(r.TotalDurationMinutes, r.TotalCalories)
}

// UpdateSessionRequest is the payload for PATCH /v1/sessions/{id}. Absent
// and null fields leave the stored values unchanged.
type UpdateSessionRequest struct {
	Title                *string    `json:"title"`
	WorkoutType          *string    `json:"workoutType"`
	Notes                *string    `json:"notes"`
	WorkoutDate          *time.Time `json:"workoutDate"`
	StartTime            *time.Time `json:"startTime"`
	EndTime              *time.Time `json:"endTime"`
	TotalDurationMinutes *int       `json:"totalDurationMinutes"`
	TotalCalories        *int       `json:"totalCalories"`
}

// Validate ensures request correctness.
func (r UpdateSessionRequest) Validate() error {
	return validateSessionFields(r.TotalDurationMinutes, r.TotalCalories)
}

func validateSessionFields(durationMinutes, calories *int) error {
	if durationMinutes != nil && *durationMinutes <= 0 {
		return errors.New("totalDurationMinutes must be > 0")
	}
	if calories != nil && *calories < 0 {
		return errors.New("totalCalories must be >= 0")
	}
	return nil
}

// UpsertExerciseRequest is the payload for POST /v1/exercises. An empty id
// inserts a new exercise, a non-empty id patches the existing one.
type UpsertExerciseRequest struct {
	ID              string   `json:"id"`
	SessionID       string   `json:"sessionId"`
	Name            string   `json:"name"`
	Category        *string  `json:"category"`
	Sets            *int     `json:"sets"`
	RepsPerSet      *int     `json:"repsPerSet"`
	WeightPerRep    *float64 `json:"weightPerRep"`
	DistanceKm      *float64 `json:"distanceKm"`
	DurationMinutes *float64 `json:"durationMinutes"`
	CaloriesBurned  *float64 `json:"caloriesBurned"`
	Notes           *string  `json:"notes"`
}

// Validate ensures request correctness.
func (r UpsertExerciseRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return errors.New("sessionId is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if r.Sets != nil && *r.Sets <= 0 {
		return errors.New("sets must be > 0")
	}
	if r.RepsPerSet != nil && *r.RepsPerSet <= 0 {
		return errors.New("repsPerSet must be > 0")
	}
	if r.WeightPerRep != nil && *r.WeightPerRep <= 0 {
		return errors.New("weightPerRep must be > 0")
	}
	if r.DistanceKm != nil && *r.DistanceKm <= 0 {
		return errors.New("distanceKm must be > 0")
	}
	if r.DurationMinutes != nil && *r.DurationMinutes <= 0 {
		return errors.New("durationMinutes must be > 0")
	}
	if r.CaloriesBurned != nil && *r.CaloriesBurned < 0 {
		return errors.New("caloriesBurned must be >= 0")
	}
	return nil
}

// SessionView exposes a workout session on the wire.
type SessionView struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"userId"`
	Title                *string    `json:"title,omitempty"`
	WorkoutType          *string    `json:"workoutType,omitempty"`
	Notes                *string    `json:"notes,omitempty"`
	WorkoutDate          time.Time  `json:"workoutDate"`
	StartTime            *time.Time `json:"startTime,omitempty"`
	EndTime              *time.Time `json:"endTime,omitempty"`
	TotalDurationMinutes *int       `json:"totalDurationMinutes,omitempty"`
	TotalCalories        *int       `json:"totalCalories,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// ExerciseView exposes a workout exercise on the wire.
type ExerciseView struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"sessionId"`
	UserID          string    `json:"userId"`
	Name            string    `json:"name"`
	Category        *string   `json:"category,omitempty"`
	Sets            *int      `json:"sets,omitempty"`
	RepsPerSet      *int      `json:"repsPerSet,omitempty"`
	WeightPerRep    *float64  `json:"weightPerRep,omitempty"`
	DistanceKm      *float64  `json:"distanceKm,omitempty"`
	DurationMinutes *float64  `json:"durationMinutes,omitempty"`
	CaloriesBurned  *float64  `json:"caloriesBurned,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ListSessionsResponse packages one page of sessions. Total counts the items
// on this page.
type ListSessionsResponse struct {
	Items    []SessionView `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

// SessionDetailResponse pairs a session with its exercises.
type SessionDetailResponse struct {
	Session   SessionView    `json:"session"`
	Exercises []ExerciseView `json:"exercises"`
}

// DeleteResponse echoes the id of a deleted record.
type DeleteResponse struct {
	ID string `json:"id"`
}

func positiveIntParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return parsed, nil
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "workout session not found")
	case errors.Is(err, domain.ErrExerciseNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "workout exercise not found")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	payload := map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"kind":    kind,
			"message": message,
		},
	}
	writeJSON(w, status, payload)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	payload := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toSessionView(session domain.WorkoutSession) SessionView {
	return SessionView{
		ID:                   session.ID,
		UserID:               session.UserID,
		Title:                session.Title,
		WorkoutType:          session.WorkoutType,
		Notes:                session.Notes,
		WorkoutDate:          session.WorkoutDate,
		StartTime:            session.StartTime,
		EndTime:              session.EndTime,
		TotalDurationMinutes: session.TotalDurationMinutes,
		TotalCalories:        session.TotalCalories,
		CreatedAt:            session.CreatedAt,
		UpdatedAt:            session.UpdatedAt,
	}
}

func toExerciseView(exercise domain.WorkoutExercise) ExerciseView {
	return ExerciseView{
		ID:              exercise.ID,
		SessionID:       exercise.SessionID,
		UserID:          exercise.UserID,
		Name:            exercise.Name,
		Category:        exercise.Category,
		Sets:            exercise.Sets,
		RepsPerSet:      exercise.RepsPerSet,
		WeightPerRep:    exercise.WeightPerRep,
		DistanceKm:      exercise.DistanceKm,
		DurationMinutes: exercise.DurationMinutes,
		CaloriesBurned:  exercise.CaloriesBurned,
		Notes:           exercise.Notes,
		CreatedAt:       exercise.CreatedAt,
	}
}
