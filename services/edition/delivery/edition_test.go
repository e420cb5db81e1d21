package delivery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trainingportal/config"
	"trainingportal/domain"
	"trainingportal/middleware"

	"github.com/gofiber/fiber/v2"
)

type stubEditions struct {
	lastPatch domain.EditionPatch
	err       error
}

func (s *stubEditions) Create(ctx context.Context, req *domain.CreateEditionRequest) (*domain.Edition, error) {
	return &domain.Edition{ID: 1, CourseID: req.CourseID, Status: domain.EditionDraft, Version: 1}, s.err
}

func (s *stubEditions) Get(ctx context.Context, id uint) (*domain.Edition, error) {
	if s.err != nil {
		return nil, s.err
	}
	clientID := uint(3)
	return &domain.Edition{ID: id, ClientID: &clientID, Status: domain.EditionPublished}, nil
}

func (s *stubEditions) Update(ctx context.Context, id uint, patch domain.EditionPatch) (*domain.EditionUpdateResult, error) {
	s.lastPatch = patch
	if s.err != nil {
		return nil, s.err
	}
	return &domain.EditionUpdateResult{
		Edition:       &domain.Edition{ID: id, Status: domain.EditionPublished},
		Notifications: []domain.Notification{{Type: domain.NotificationNewEdition, Title: "New course edition available"}},
	}, nil
}

func (s *stubEditions) Delete(ctx context.Context, id uint) ([]domain.Notification, error) {
	return nil, s.err
}

type stubLessons struct{}

func (stubLessons) AddLesson(ctx context.Context, editionID uint, req *domain.LessonRequest) (*domain.Lesson, error) {
	return &domain.Lesson{ID: 1, EditionID: editionID, DurationHours: req.DurationHours}, nil
}

func (stubLessons) UpdateLesson(ctx context.Context, lessonID uint, req *domain.LessonRequest) (*domain.Lesson, error) {
	return nil, domain.ErrLessonLocked
}

func (stubLessons) DeleteLesson(ctx context.Context, lessonID uint) error {
	return domain.ErrLessonNotFound
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, app *fiber.App, method, path, body, token string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func TestUpdateEditionStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"validation", domain.NewValidationError("endDate", "end date must be after start date"), http.StatusBadRequest},
		{"archived", domain.ArchivedError(), http.StatusForbidden},
		{"not found", domain.ErrEditionNotFound, http.StatusNotFound},
		{"conflict", domain.ErrConcurrentUpdate, http.StatusConflict},
		{"other", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(config.GetFiberConfig())
			NewEditionDelivery(app, &stubEditions{err: tc.err}, stubLessons{})

			status, env := do(t, app, http.MethodPut, "/editions/7", `{"notes":"x"}`, "")
			if status != tc.want {
				t.Fatalf("got %d, want %d (%s)", status, tc.want, env.Message)
			}
			if env.Success != (tc.err == nil) {
				t.Fatalf("unexpected envelope %+v", env)
			}
		})
	}
}

func TestUpdateEditionParsesDates(t *testing.T) {
	app := fiber.New(config.GetFiberConfig())
	stub := &stubEditions{}
	NewEditionDelivery(app, stub, stubLessons{})

	status, env := do(t, app, http.MethodPut, "/editions/7", `{"status":"PUBLISHED","startDate":"2025-01-12"}`, "")
	if status != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", status, env.Error)
	}
	if stub.lastPatch.Status == nil || *stub.lastPatch.Status != domain.EditionPublished {
		t.Fatalf("unexpected patch status %v", stub.lastPatch.Status)
	}
	want := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	if stub.lastPatch.StartDate == nil || !stub.lastPatch.StartDate.Equal(want) {
		t.Fatalf("unexpected patch start %v", stub.lastPatch.StartDate)
	}

	var data domain.EditionUpdateResult
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Notifications) != 1 {
		t.Fatalf("notifications missing from response: %s", env.Data)
	}

	status, _ = do(t, app, http.MethodPut, "/editions/7", `{"startDate":"12/01/2025"}`, "")
	if status != http.StatusBadRequest {
		t.Fatalf("bad date: got %d", status)
	}
	status, _ = do(t, app, http.MethodPut, "/editions/7", `{"status":"PAUSED"}`, "")
	if status != http.StatusBadRequest {
		t.Fatalf("bad status: got %d", status)
	}
	status, _ = do(t, app, http.MethodPut, "/editions/abc", `{}`, "")
	if status != http.StatusBadRequest {
		t.Fatalf("bad id: got %d", status)
	}
}

func TestLessonErrors(t *testing.T) {
	app := fiber.New(config.GetFiberConfig())
	NewEditionDelivery(app, &stubEditions{}, stubLessons{})

	status, _ := do(t, app, http.MethodPut, "/lessons/1", `{"date":"2025-01-10","durationHours":2}`, "")
	if status != http.StatusConflict {
		t.Fatalf("locked lesson: got %d", status)
	}
	status, _ = do(t, app, http.MethodDelete, "/lessons/1", "", "")
	if status != http.StatusNotFound {
		t.Fatalf("missing lesson: got %d", status)
	}
	status, _ = do(t, app, http.MethodPost, "/editions/1/lessons", `{"date":"2025-01-10"}`, "")
	if status != http.StatusBadRequest {
		t.Fatalf("missing duration: got %d", status)
	}
	status, _ = do(t, app, http.MethodPost, "/editions/1/lessons", `{"date":"2025-01-10","durationHours":1.5}`, "")
	if status != http.StatusCreated {
		t.Fatalf("add lesson: got %d", status)
	}
}

func TestDeployRoutesRequireAdmin(t *testing.T) {
	t.Setenv("BYTE_KEY", "test-secret")

	app := fiber.New(config.GetFiberConfig())
	NewEditionDeliveryDeploy(app, &stubEditions{}, stubLessons{})

	status, _ := do(t, app, http.MethodPut, "/editions/7", `{"notes":"x"}`, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("no token: got %d", status)
	}

	clientID := uint(3)
	clientToken, err := middleware.GenerateJWT(domain.Claims{Username: "acme", Role: domain.RoleClient, ClientID: &clientID}, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	status, _ = do(t, app, http.MethodPut, "/editions/7", `{"notes":"x"}`, clientToken)
	if status != http.StatusForbidden {
		t.Fatalf("client token: got %d", status)
	}
	status, _ = do(t, app, http.MethodGet, "/editions/7", "", clientToken)
	if status != http.StatusOK {
		t.Fatalf("client read of own edition: got %d", status)
	}

	otherID := uint(4)
	otherToken, err := middleware.GenerateJWT(domain.Claims{Username: "globex", Role: domain.RoleClient, ClientID: &otherID}, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	status, _ = do(t, app, http.MethodGet, "/editions/7", "", otherToken)
	if status != http.StatusNotFound {
		t.Fatalf("client read of foreign edition: got %d", status)
	}

	adminToken, err := middleware.GenerateJWT(domain.Claims{Username: "admin", Role: domain.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	status, _ = do(t, app, http.MethodPut, "/editions/7", `{"notes":"x"}`, adminToken)
	if status != http.StatusOK {
		t.Fatalf("admin token: got %d", status)
	}
}
