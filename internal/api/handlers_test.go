package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/srkarthi1982/fitness-tracker/internal/auth"
	"github.com/srkarthi1982/fitness-tracker/internal/domain"
	"github.com/srkarthi1982/fitness-tracker/internal/persistence/memory"
)

func TestCreateSessionFillsIdentityAndDefaults(t *testing.T) {
	handler, _ := newTestHandler()

	payload := map[string]interface{}{"title": "Push Day"}
	buf, _ := json.Marshal(payload)

	req := withClaims(httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(buf)), "user-1")
	rr := httptest.NewRecorder()
	handler.sessions(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var view SessionView
	decodeData(t, rr, &view)

	if view.ID == "" {
		t.Fatalf("expected generated session id")
	}
	if view.UserID != "user-1" {
		t.Fatalf("expected userId from token, got %s", view.UserID)
	}
	if view.Title == nil || *view.Title != "Push Day" {
		t.Fatalf("unexpected title %v", view.Title)
	}
	if view.WorkoutDate.IsZero() {
		t.Fatalf("expected workoutDate to default to now")
	}
	if view.TotalCalories != nil {
		t.Fatalf("expected totalCalories to stay unset, got %v", *view.TotalCalories)
	}
	if view.CreatedAt.IsZero() || view.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
}

func TestCreateSessionIgnoresCallerSuppliedUserID(t *testing.T) {
	handler, _ := newTestHandler()

	payload := map[string]interface{}{"title": "Leg Day", "userId": "intruder"}
	buf, _ := json.Marshal(payload)

	req := withClaims(httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(buf)), "user-1")
	rr := httptest.NewRecorder()
	handler.sessions(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var view SessionView
	decodeData(t, rr, &view)
	if view.UserID != "user-1" {
		t.Fatalf("expected userId user-1, got %s", view.UserID)
	}
}

func TestCreateSessionRejectsNonPositiveDuration(t *testing.T) {
	handler, _ := newTestHandler()

	payload := map[string]interface{}{"title": "Push Day", "totalDurationMinutes": -5}
	buf, _ := json.Marshal(payload)

	req := withClaims(httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(buf)), "user-1")
	rr := httptest.NewRecorder()
	handler.sessions(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if kind := decodeEnvelope(t, rr).errorKind(); kind != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT, got %s", kind)
	}
}

func TestSessionsRequireAuth(t *testing.T) {
	handler, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	rr := httptest.NewRecorder()
	handler.sessions(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if kind := decodeEnvelope(t, rr).errorKind(); kind != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED, got %s", kind)
	}
}

func TestUpdateSessionAppliesOnlySuppliedFields(t *testing.T) {
	handler, service := newTestHandler()
	calories := 320
	created := seedSession(t, service, domain.CreateSessionInput{
		UserID:        "user-1",
		Title:         strPtr("Pull Day"),
		TotalCalories: &calories,
	})

	payload := map[string]interface{}{"notes": "felt strong"}
	buf, _ := json.Marshal(payload)

	req := withClaims(httptest.NewRequest(http.MethodPatch, "/v1/sessions/"+created.ID, bytes.NewReader(buf)), "user-1")
	rr := httptest.NewRecorder()
	handler.sessionByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var view SessionView
	decodeData(t, rr, &view)

	if view.Notes == nil || *view.Notes != "felt strong" {
		t.Fatalf("expected notes applied, got %v", view.Notes)
	}
	if view.Title == nil || *view.Title != "Pull Day" {
		t.Fatalf("expected title untouched, got %v", view.Title)
	}
	if view.TotalCalories == nil || *view.TotalCalories != 320 {
		t.Fatalf("expected totalCalories untouched, got %v", view.TotalCalories)
	}
	if !view.UpdatedAt.After(created.CreatedAt) && !view.UpdatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected updatedAt at or after createdAt")
	}
}

func TestUpdateSessionWithEmptyBodyStillRefreshesUpdatedAt(t *testing.T) {
	handler, service := newTestHandler()
	created := seedSession(t, service, domain.CreateSessionInput{UserID: "user-1", Title: strPtr("Rest Day")})

	req := withClaims(httptest.NewRequest(http.MethodPatch, "/v1/sessions/"+created.ID, bytes.NewReader([]byte("{}"))), "user-1")
	rr := httptest.NewRecorder()
	handler.sessionByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var view SessionView
	decodeData(t, rr, &view)

	if !view.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updatedAt to move forward")
	}
	if view.Title == nil || *view.Title != "Rest Day" {
		t.Fatalf("expected title untouched, got %v", view.Title)
	}
}

func TestUpdateSessionForeignOwnedFailsNotFound(t *testing.T) {
	handler, service := newTestHandler()
	created := seedSession(t, service, domain.CreateSessionInput{UserID: "user-1", Title: strPtr("Push Day")})

	payload := map[string]interface{}{"title": "Hijacked"}
	buf, _ := json.Marshal(payload)

	req := withClaims(httptest.NewRequest(http.MethodPatch, "/v1/sessions/"+created.ID, bytes.NewReader(buf)), "user-2")
	rr := httptest.NewRecorder()
	handler.sessionByID(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if kind := decodeEnvelope(t, rr).errorKind(); kind != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", kind)
	}

	stored, _, err := service.GetSessionWithExercises(context.Background(), "user-1", created.ID)
	if err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if stored.Title == nil || *stored.Title != "Push Day" {
		t.Fatalf("expected row to stay unchanged, got %v", stored.Title)
	}
}

func TestDeleteSessionCascadesToOwnExercisesOnly(t *testing.T) {
	handler, service := newTestHandler()
	target := seedSession(t, service, domain.CreateSessionInput{UserID: "user-1", Title: strPtr("Push Day")})
	keeper := seedSession(t, service, domain.CreateSessionInput{UserID: "user-1", Title: strPtr("Leg Day")})

	seedExercise(t, service, target.ID, "user-1", "Bench Press")
	kept := seedExercise(t, service, keeper.ID, "user-1", "Back Squat")

	req := withClaims(httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+target.ID, nil), "user-1")
	rr := httptest.NewRecorder()
	handler.sessionByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var deleted DeleteResponse
	decodeData(t, rr, &deleted)
	if deleted.ID != target.ID {
		t.Fatalf("expected deleted id %s, got %s", target.ID, deleted.ID)
	}

	if _, _, err := service.GetSessionWithExercises(context.Background(), "user-1", target.ID); err != domain.ErrSessionNotFound {
		t.Fatalf("expected session gone, got %v", err)
	}

	_, exercises, err := service.GetSessionWithExercises(context.Background(), "user-1", keeper.ID)
	if err != nil {
		t.Fatalf("keeper lookup failed: %v", err)
	}
	if len(exercises) != 1 || exercises[0].ID != kept.ID {
		t.Fatalf("expected sibling session exercises untouched, got %v", exercises)
	}
}

func TestListSessionsPaginatesNewestFirst(t *testing.T) {
	handler, service := newTestHandler()
	day := time.Date(2026, time.February, 10, 8, 0, 0, 0, time.UTC)

	oldest := seedSession(t, service, domain.CreateSessionInput{UserID: "user-1", Title: strPtr("One"), WorkoutDate: timePtr(day)})
	middle := seedSession(t, service, domain.CreateSessionInput{UserID: "user-1", Title: strPtr("Two"), WorkoutDate: timePtr(day.Add(24 * time.Hour))})
	newest := seedSession(t, service, domain.CreateSessionInput{UserID: "user-1", Title: strPtr("Three"), WorkoutDate: timePtr(day.Add(48 * time.Hour))})

	req := withClaims(httptest.NewRequest(http.MethodGet, "/v1/sessions?page=2&pageSize=1", nil), "user-1")
	rr := httptest.NewRecorder()
	handler.sessions(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var list ListSessionsResponse
	decodeData(t, rr, &list)

	if len(list.Items) != 1 {
		t.Fatalf("expected exactly 1 item, got %d", len(list.Items))
	}
	if list.Items[0].ID != middle.ID {
		t.Fatalf("expected middle session %s, got %s", middle.ID, list.Items[0].ID)
	}
	if list.Total != 1 {
		t.Fatalf("expected total to count page items, got %d", list.Total)
	}
	if list.Page != 2 || list.PageSize != 1 {
		t.Fatalf("expected echo of page=2 pageSize=1, got page=%d pageSize=%d", list.Page, list.PageSize)
	}

	// Defaults return the full set newest first.
	req = withClaims(httptest.NewRequest(http.MethodGet, "/v1/sessions", nil), "user-1")
	rr = httptest.NewRecorder()
	handler.sessions(rr, req)

	decodeData(t, rr, &list)
	if len(list.Items) != 3 || list.Total != 3 {
		t.Fatalf("expected 3 items with total 3, got %d/%d", len(list.Items), list.Total)
	}
	if list.Items[0].ID != newest.ID || list.Items[2].ID != oldest.ID {
		t.Fatalf("expected newest-first ordering")
	}
	if list.Page != domain.DefaultPage || list.PageSize != domain.DefaultPageSize {
		t.Fatalf("expected default page echo, got page=%d pageSize=%d", list.Page, list.PageSize)
	}
}

func TestListSessionsRejectsOutOfRangePaging(t *testing.T) {
	handler, _ := newTestHandler()

	for _, target := range []string{
		"/v1/sessions?page=0",
		"/v1/sessions?page=abc",
		"/v1/sessions?pageSize=-2",
		"/v1/sessions?pageSize=101",
	} {
		req := withClaims(httptest.NewRequest(http.MethodGet, target, nil), "user-1")
		rr := httptest.NewRecorder()
		handler.sessions(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rr.Code)
		}
		if kind := decodeEnvelope(t, rr).errorKind(); kind != "INVALID_INPUT" {
			t.Fatalf("%s: expected INVALID_INPUT, got %s", target, kind)
		}
	}
}

func TestUpsertExerciseWithoutIDAlwaysInserts(t *testing.T) {
	handler, service := newTestHandler()
	session := seedSession(t, service, domain.CreateSessionInput{UserID: "user-1", Title: strPtr("Push Day")})

	payload := map[string]interface{}{
		"sessionId":    session.ID,
		"name":         "Bench Press",
		"sets":         3,
		"repsPerSet":   8,
		"weightPerRep": 60,
	}

	first := postExercise(t, handler, payload, "user-1", http.StatusOK)
	second := postExercise(t, handler, payload, "user-1", http.StatusOK)

	if first.ID == "" || second.ID == "" {
		t.Fatalf("expected generated ids")
	}
	if first.ID == second.ID {
		t.Fatalf("expected a fresh id per insert, got duplicate %s", first.ID)
	}
	if first.Sets == nil || *first.Sets != 3 || first.RepsPerSet == nil || *first.RepsPerSet != 8 {
		t.Fatalf("unexpected exercise fields: %+v", first)
	}
	if first.WeightPerRep == nil || *first.WeightPerRep != 60 {
		t.Fatalf("unexpected weightPerRep: %+v", first.WeightPerRep)
	}
}

func TestUpsertExerciseWithIDPatchesExisting(t *testing.T) {
	handler, service := newTestHandler()
	session := seedSession(t, service, domain.CreateSessionInput{UserID: "user-1", Title: strPtr("Push Day")})
	existing := seedExercise(t, service, session.ID, "user-1", "Bench Press")

	payload := map[string]interface{}{
		"id":        existing.ID,
		"sessionId": session.ID,
		"name":      "Incline Bench Press",
		"sets":      4,
	}

	patched := postExercise(t, handler, payload, "user-1", http.StatusOK)

	if patched.ID != existing.ID {
		t.Fatalf("expected id %s preserved, got %s", existing.ID, patched.ID)
	}
	if patched.Name != "Incline Bench Press" {
		t.Fatalf("expected name overwritten, got %s", patched.Name)
	}
	if patched.Sets == nil || *patched.Sets != 4 {
		t.Fatalf("expected sets patched, got %v", patched.Sets)
	}
	if patched.RepsPerSet == nil || *patched.RepsPerSet != 8 {
		t.Fatalf("expected repsPerSet untouched, got %v", patched.RepsPerSet)
	}
}

func TestUpsertExerciseForeignSessionFailsNotFound(t *testing.T) {
	handler, service := newTestHandler()
	session := seedSession(t, service, domain.CreateSessionInput{UserID: "user-1", Title: strPtr("Push Day")})

	payload := map[string]interface{}{"sessionId": session.ID, "name": "Bench Press"}
	buf, _ := json.Marshal(payload)

	req := withClaims(httptest.NewRequest(http.MethodPost, "/v1/exercises", bytes.NewReader(buf)), "user-2")
	rr := httptest.NewRecorder()
	handler.exercises(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestUpsertExerciseForeignExerciseFailsNotFound(t *testing.T) {
	handler, service := newTestHandler()
	mine := seedSession(t, service, domain.CreateSessionInput{UserID: "user-1", Title: strPtr("Push Day")})
	theirs := seedSession(t, service, domain.CreateSessionInput{UserID: "user-2", Title: strPtr("Push Day")})
	foreign := seedExercise(t, service, theirs.ID, "user-2", "Bench Press")

	payload := map[string]interface{}{"id": foreign.ID, "sessionId": mine.ID, "name": "Bench Press"}
	buf, _ := json.Marshal(payload)

	req := withClaims(httptest.NewRequest(http.MethodPost, "/v1/exercises", bytes.NewReader(buf)), "user-1")
	rr := httptest.NewRecorder()
	handler.exercises(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestUpsertExerciseRequiresName(t *testing.T) {
	handler, service := newTestHandler()
	session := seedSession(t, service, domain.CreateSessionInput{UserID: "user-1", Title: strPtr("Push Day")})

	payload := map[string]interface{}{"sessionId": session.ID, "name": "   "}
	buf, _ := json.Marshal(payload)

	req := withClaims(httptest.NewRequest(http.MethodPost, "/v1/exercises", bytes.NewReader(buf)), "user-1")
	rr := httptest.NewRecorder()
	handler.exercises(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestDeleteExerciseRemovesSingleRow(t *testing.T) {
	handler, service := newTestHandler()
	session := seedSession(t, service, domain.CreateSessionInput{UserID: "user-1", Title: strPtr("Push Day")})
	exercise := seedExercise(t, service, session.ID, "user-1", "Bench Press")

	req := withClaims(httptest.NewRequest(http.MethodDelete, "/v1/exercises/"+exercise.ID, nil), "user-1")
	rr := httptest.NewRecorder()
	handler.exerciseByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var deleted DeleteResponse
	decodeData(t, rr, &deleted)
	if deleted.ID != exercise.ID {
		t.Fatalf("expected deleted id %s, got %s", exercise.ID, deleted.ID)
	}

	_, exercises, err := service.GetSessionWithExercises(context.Background(), "user-1", session.ID)
	if err != nil {
		t.Fatalf("session lookup failed: %v", err)
	}
	if len(exercises) != 0 {
		t.Fatalf("expected no exercises left, got %d", len(exercises))
	}
}

// Walks the documented client flow end to end through the router.
func TestPushDayFlow(t *testing.T) {
	handler, _ := newTestHandler()
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	do := func(method, target string, body interface{}) *httptest.ResponseRecorder {
		var reader *bytes.Reader
		if body != nil {
			buf, _ := json.Marshal(body)
			reader = bytes.NewReader(buf)
		} else {
			reader = bytes.NewReader(nil)
		}
		req := withClaims(httptest.NewRequest(method, target, reader), "lifter-9")
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodPost, "/v1/sessions", map[string]interface{}{"title": "Push Day"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var session SessionView
	decodeData(t, rr, &session)

	rr = do(http.MethodPost, "/v1/exercises", map[string]interface{}{
		"sessionId":    session.ID,
		"name":         "Bench Press",
		"sets":         3,
		"repsPerSet":   8,
		"weightPerRep": 60,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("upsert: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var exercise ExerciseView
	decodeData(t, rr, &exercise)

	rr = do(http.MethodGet, "/v1/sessions/"+session.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("detail: expected 200, got %d", rr.Code)
	}
	var detail SessionDetailResponse
	decodeData(t, rr, &detail)
	if len(detail.Exercises) != 1 || detail.Exercises[0].ID != exercise.ID {
		t.Fatalf("expected the bench press in session detail, got %+v", detail.Exercises)
	}

	rr = do(http.MethodDelete, "/v1/sessions/"+session.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rr.Code)
	}

	rr = do(http.MethodGet, "/v1/sessions/"+session.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rr.Code)
	}
	if kind := decodeEnvelope(t, rr).errorKind(); kind != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", kind)
	}
}

func TestSessionsRejectUnsupportedMethods(t *testing.T) {
	handler, _ := newTestHandler()

	req := withClaims(httptest.NewRequest(http.MethodPut, "/v1/sessions", nil), "user-1")
	rr := httptest.NewRecorder()
	handler.sessions(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e envelope) errorKind() string {
	if e.Error == nil {
		return ""
	}
	return e.Error.Kind
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	env := decodeEnvelope(t, rr)
	if !env.Success {
		t.Fatalf("expected success envelope, got %s", rr.Body.String())
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func newTestHandler() (*Handler, *domain.Service) {
	service := domain.NewService(memory.NewRepository())
	return NewHandler(service), service
}

func withClaims(req *http.Request, userID string) *http.Request {
	claims := &auth.Claims{Subject: userID, ExpiresAt: time.Now().Add(time.Hour)}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func seedSession(t *testing.T, service *domain.Service, input domain.CreateSessionInput) *domain.WorkoutSession {
	t.Helper()
	session, err := service.CreateSession(context.Background(), input)
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return session
}

func seedExercise(t *testing.T, service *domain.Service, sessionID, userID, name string) *domain.WorkoutExercise {
	t.Helper()
	sets, reps := 3, 8
	exercise, err := service.UpsertExercise(context.Background(), domain.ExerciseUpsertInput{
		SessionID:  sessionID,
		UserID:     userID,
		Name:       name,
		Sets:       &sets,
		RepsPerSet: &reps,
	})
	if err != nil {
		t.Fatalf("seed exercise: %v", err)
	}
	return exercise
}

func postExercise(t *testing.T, handler *Handler, payload map[string]interface{}, userID string, wantStatus int) ExerciseView {
	t.Helper()
	buf, _ := json.Marshal(payload)
	req := withClaims(httptest.NewRequest(http.MethodPost, "/v1/exercises", bytes.NewReader(buf)), userID)
	rr := httptest.NewRecorder()
	handler.exercises(rr, req)

	if rr.Code != wantStatus {
		t.Fatalf("expected %d, got %d: %s", wantStatus, rr.Code, rr.Body.String())
	}
	var view ExerciseView
	decodeData(t, rr, &view)
	return view
}

func strPtr(s string) *string { return &s }

func timePtr(ts time.Time) *time.Time { return &ts }
