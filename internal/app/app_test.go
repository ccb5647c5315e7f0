package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"quizify_backend/internal/config"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Store.Type = "memory"
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()
	cfg.JWT.Secret = "app-test-secret-app-test-secret-000"
	cfg.JWT.ExpireTime = time.Hour
	cfg.RateLimit.MaxRequests = 10000
	cfg.RateLimit.WindowMinutes = 1

	app, err := build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func call(t *testing.T, app *App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func signUp(t *testing.T, app *App, email, role string) string {
	t.Helper()
	code, _ := call(t, app, http.MethodPost, "/api/register", "", gin.H{
		"name": email, "email": email, "password": "password1", "role": role,
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := call(t, app, http.MethodPost, "/api/login", "", gin.H{"email": email, "password": "password1"})
	require.Equal(t, http.StatusOK, code)
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res.Token
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	code, env := call(t, app, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"store":"up"`)
}

func TestQuizLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	teacher := signUp(t, app, "teacher@example.com", "teacher")
	student := signUp(t, app, "student@example.com", "student")

	code, _ := call(t, app, http.MethodPost, "/api/teacher/quizzes", student, gin.H{"title": "x"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env := call(t, app, http.MethodPost, "/api/teacher/quizzes", teacher, gin.H{
		"title":       "Data structures",
		"description": "Week 3",
		"timeLimit":   0,
		"isPublished": true,
		"questions": []gin.H{
			{"id": "mcq", "type": "mcq", "question": "Pick", "options": []string{"a", "b", "c"}, "correctAnswer": 1, "points": 2},
			{"id": "tf", "type": "true-false", "question": "True?", "correctAnswer": 0, "points": 1},
		},
	})
	require.Equal(t, http.StatusCreated, code)
	var quiz struct {
		ID          string `json:"id"`
		TotalPoints int    `json:"totalPoints"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &quiz))
	assert.Equal(t, 3, quiz.TotalPoints)

	code, env = call(t, app, http.MethodGet, "/api/quizzes/"+quiz.ID, student, nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "correctAnswer")

	code, env = call(t, app, http.MethodPost, "/api/quizzes/"+quiz.ID+"/sessions", student, nil)
	require.Equal(t, http.StatusCreated, code)
	var sess struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	base := "/api/sessions/" + sess.ID

	code, _ = call(t, app, http.MethodPost, base+"/next", student, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = call(t, app, http.MethodPut, base+"/answers/mcq", student, gin.H{"answer": 1})
	require.Equal(t, http.StatusOK, code)
	code, _ = call(t, app, http.MethodPost, base+"/next", student, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = call(t, app, http.MethodPut, base+"/answers/tf", student, gin.H{"answer": 1})
	require.Equal(t, http.StatusOK, code)

	code, env = call(t, app, http.MethodPost, base+"/submit", student, nil)
	require.Equal(t, http.StatusOK, code)
	var attempt struct {
		ID    string `json:"id"`
		Score int    `json:"score"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &attempt))
	assert.Equal(t, 2, attempt.Score)

	code, env = call(t, app, http.MethodGet, "/api/attempts/"+attempt.ID, student, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"percentage":67`)

	code, env = call(t, app, http.MethodGet, "/api/dashboard", student, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"completedQuizzes":1`)

	code, env = call(t, app, http.MethodGet, "/api/teacher/dashboard", teacher, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"totalAttempts":1`)

	code, _ = call(t, app, http.MethodDelete, "/api/teacher/quizzes/"+quiz.ID, teacher, nil)
	require.Equal(t, http.StatusOK, code)
	code, env = call(t, app, http.MethodGet, "/api/attempts", student, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), attempt.ID)
}

func TestLogoutRevokesToken(t *testing.T) {
	app := newTestApp(t)
	token := signUp(t, app, "bo@example.com", "student")

	code, _ := call(t, app, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = call(t, app, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = call(t, app, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestDocumentUploadOverHTTP(t *testing.T) {
	app := newTestApp(t)
	teacher := signUp(t, app, "t2@example.com", "teacher")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	fmt.Fprint(fw, "We studied the stack and the queue today.")
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/teacher/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+teacher)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var pool struct {
		Candidates int               `json:"candidates"`
		Questions  []json.RawMessage `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pool))
	assert.Equal(t, 5, pool.Candidates)
	assert.Len(t, pool.Questions, 5)
}
