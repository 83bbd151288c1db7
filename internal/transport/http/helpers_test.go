package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz-session-engine/internal/app"
	"quiz-session-engine/internal/auth"
	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/infra/memory"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	*httptest.Server
	results *memory.ResultStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	results := memory.NewResultStore()
	manager := app.NewSessionManager(memory.NewSessionStore(),
		app.WithFinalizeHook(func(r domain.Result) {
			_ = results.SaveResult(context.Background(), r)
		}),
	)
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute)
	service := app.NewQuizService(manager, quizzes, results, 2*time.Hour)

	server := httptest.NewServer(NewRouter(service, testSecret, zap.NewNop(), nil))
	t.Cleanup(server.Close)
	return &testServer{Server: server, results: results}
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.Issue(testSecret, userID, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// do sends a JSON request as userID (anonymous when empty) and decodes the
// response into out when out is non-nil.
func (s *testServer) do(t *testing.T, method, path, userID string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+bearer(t, userID))
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (s *testServer) start(t *testing.T, userID string) startResponse {
	t.Helper()
	var started startResponse
	if status := s.do(t, http.MethodPost, "/api/quiz/quiz-1/start", userID, nil, &started); status != http.StatusOK {
		t.Fatalf("start status = %d", status)
	}
	return started
}

func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:               "quiz-1",
			Title:            "Arithmetic",
			TimeLimitSeconds: 60,
			Questions: []domain.Question{
				{ID: "q1", Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1},
				{ID: "q2", Prompt: "What is 3 * 3?", Options: []string{"6", "9"}, CorrectIndex: 1},
			},
		},
		"quiz-broken": {
			ID:        "quiz-broken",
			Questions: []domain.Question{{ID: "q1", Prompt: "?", Options: []string{"only"}}},
		},
	}
}
