package handler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regform/internal/registration/models"
	"regform/internal/registration/service"
	"regform/internal/registration/store"
	"regform/pkg/platform/sentinel"
	"regform/pkg/testutil"
)

var johnDoe = map[string]string{
	"name":    "John Doe",
	"gender":  "male",
	"email":   "john.doe@example.com",
	"country": "usa",
}

func newRouter(t *testing.T, st service.Store) (http.Handler, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))
	h := New(service.New(st, service.WithLogger(logger)), logger)
	r := chi.NewRouter()
	h.Register(r)
	return r, logs
}

func count(t *testing.T, router http.Handler) int {
	t.Helper()
	rr := testutil.Do(router, httptest.NewRequest(http.MethodGet, "/users/count", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return testutil.Decode[models.CountResponse](t, rr).Count
}

func register(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.Do(router, testutil.NewJSONRequest(t, http.MethodPost, "/register", body))
}

func TestRegisterThenReadBack(t *testing.T) {
	router, _ := newRouter(t, store.NewInMemory())

	rr := register(t, router, johnDoe)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := testutil.Decode[models.RegisterResponse](t, rr)
	assert.Equal(t, "User registered successfully", created.Message)
	assert.Positive(t, created.UserID)

	list := testutil.Do(router, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, "application/json", list.Header().Get("Content-Type"))
	records := testutil.Decode[[]map[string]any](t, list)
	require.Len(t, records, 1)
	assert.Equal(t, float64(created.UserID), records[0]["id"])
	assert.Equal(t, "john.doe@example.com", records[0]["email"])
	assert.Contains(t, records[0], "created_at")

	assert.Equal(t, 1, count(t, router))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _ := newRouter(t, store.NewInMemory())

	require.Equal(t, http.StatusCreated, register(t, router, johnDoe).Code)
	rr := register(t, router, johnDoe)
	testutil.RequireError(t, rr, http.StatusBadRequest, "Email already registered")
	assert.Equal(t, 1, count(t, router))
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name string
		body map[string]string
		want string
	}{
		{"missing name", map[string]string{"gender": "male", "email": "a@b.co", "country": "usa"}, "All fields are required"},
		{"empty country", map[string]string{"name": "A", "gender": "male", "email": "a@b.co", "country": ""}, "All fields are required"},
		{"empty object", map[string]string{}, "All fields are required"},
		{"invalid email", map[string]string{"name": "A", "gender": "male", "email": "not-an-email", "country": "usa"}, "Invalid email format"},
		{"email without tld", map[string]string{"name": "A", "gender": "male", "email": "a@b", "country": "usa"}, "Invalid email format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := newRouter(t, store.NewInMemory())
			testutil.RequireError(t, register(t, router, tc.body), http.StatusBadRequest, tc.want)
			assert.Zero(t, count(t, router))
		})
	}
}

func TestRegisterMalformedBodies(t *testing.T) {
	router, _ := newRouter(t, store.NewInMemory())

	rr := testutil.Do(router, testutil.NewRawRequest(t, http.MethodPost, "/register", `{"name":`))
	testutil.RequireError(t, rr, http.StatusBadRequest, "Invalid request body")

	rr = testutil.Do(router, testutil.NewRawRequest(t, http.MethodPost, "/register", `{"name":42}`))
	testutil.RequireError(t, rr, http.StatusBadRequest, "Invalid request body")

	rr = testutil.Do(router, testutil.NewRawRequest(t, http.MethodPost, "/register", ``))
	testutil.RequireError(t, rr, http.StatusBadRequest, "All fields are required")

	assert.Zero(t, count(t, router))
}

func TestRegisterPreservesUnicode(t *testing.T) {
	router, _ := newRouter(t, store.NewInMemory())
	body := map[string]string{
		"name":    "Алексей Иванов",
		"gender":  "male",
		"email":   "алексей@пример.рф",
		"country": "日本",
	}
	require.Equal(t, http.StatusCreated, register(t, router, body).Code)

	list := testutil.Do(router, httptest.NewRequest(http.MethodGet, "/users", nil))
	records := testutil.Decode[[]models.Record](t, list)
	require.Len(t, records, 1)
	assert.Equal(t, body["name"], records[0].Name)
	assert.Equal(t, body["email"], records[0].Email)
	assert.Equal(t, body["country"], records[0].Country)
}

func TestListNewestFirstAndEmpty(t *testing.T) {
	router, _ := newRouter(t, store.NewInMemory())

	empty := testutil.Do(router, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `[]`, empty.Body.String())
	assert.JSONEq(t, `{"count":0}`, testutil.Do(router, httptest.NewRequest(http.MethodGet, "/users/count", nil)).Body.String())

	for i := 0; i < 3; i++ {
		body := map[string]string{"name": fmt.Sprintf("User %d", i), "gender": "female", "email": fmt.Sprintf("u%d@example.com", i), "country": "uk"}
		require.Equal(t, http.StatusCreated, register(t, router, body).Code)
	}
	records := testutil.Decode[[]models.Record](t, testutil.Do(router, httptest.NewRequest(http.MethodGet, "/users", nil)))
	require.Len(t, records, 3)
	assert.Equal(t, "u2@example.com", records[0].Email)
	assert.Equal(t, "u0@example.com", records[2].Email)
}

func TestConcurrentDuplicateRegistrations(t *testing.T) {
	router, _ := newRouter(t, store.NewInMemory())

	const attempts = 10
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = register(t, router, johnDoe).Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusBadRequest, code)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, count(t, router))
}

type failingStore struct{ err error }

func (f failingStore) Insert(context.Context, models.Submission) (models.Record, error) {
	return models.Record{}, f.err
}
func (f failingStore) List(context.Context) ([]models.Record, error) { return nil, f.err }
func (f failingStore) Count(context.Context) (int, error)            { return 0, f.err }

func TestStorageFailureIsOpaque(t *testing.T) {
	cause := fmt.Errorf("insert user: %w: %w", sentinel.ErrUnavailable, fmt.Errorf("disk I/O error at /var/lib/users.db"))
	router, logs := newRouter(t, failingStore{err: cause})

	rr := register(t, router, johnDoe)
	testutil.RequireError(t, rr, http.StatusInternalServerError, "Database error occurred")
	assert.NotContains(t, rr.Body.String(), "disk")
	assert.Contains(t, logs.String(), "disk I/O error")

	testutil.RequireError(t, testutil.Do(router, httptest.NewRequest(http.MethodGet, "/users", nil)),
		http.StatusInternalServerError, "Database error occurred")
	testutil.RequireError(t, testutil.Do(router, httptest.NewRequest(http.MethodGet, "/users/count", nil)),
		http.StatusInternalServerError, "Database error occurred")
}

func TestValidationRunsBeforeStorage(t *testing.T) {
	router, _ := newRouter(t, failingStore{err: sentinel.ErrUnavailable})

	rr := register(t, router, map[string]string{"name": "A", "gender": "male", "email": "not-an-email", "country": "usa"})
	testutil.RequireError(t, rr, http.StatusBadRequest, "Invalid email format")

	rr = register(t, router, map[string]string{"name": strings.Repeat(" ", 3), "gender": "male", "email": "a@b.co", "country": "usa"})
	testutil.RequireError(t, rr, http.StatusBadRequest, "All fields are required")
}
