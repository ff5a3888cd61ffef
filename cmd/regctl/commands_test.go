package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "regform/internal/http"
	"regform/internal/registration/handler"
	"regform/internal/registration/models"
	"regform/internal/registration/service"
	"regform/internal/registration/store"
)

func startServer(t *testing.T) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewInMemory()
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.Deps{
		Logger:  logger,
		Modules: []httpapi.Registrar{handler.New(service.New(st, service.WithLogger(logger)), logger)},
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRegisterUsersCount(t *testing.T) {
	url := startServer(t)

	out, err := execute(t, "--server", url, "register",
		"--name", "John Doe", "--gender", "male", "--email", "john.doe@example.com", "--country", "usa")
	require.NoError(t, err)
	assert.Equal(t, "Registration successful!", strings.TrimSpace(out))

	out, err = execute(t, "--server", url, "count")
	require.NoError(t, err)
	assert.Equal(t, "1", strings.TrimSpace(out))

	out, err = execute(t, "--server", url, "users")
	require.NoError(t, err)
	var users []models.Record
	require.NoError(t, json.Unmarshal([]byte(out), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "john.doe@example.com", users[0].Email)
}

func TestRegisterReportsFailures(t *testing.T) {
	url := startServer(t)

	_, err := execute(t, "--server", url, "register", "--name", "A", "--gender", "male", "--email", "not-an-email", "--country", "usa")
	require.EqualError(t, err, "Please enter a valid email address.")

	args := []string{"--server", url, "register", "--name", "A", "--gender", "male", "--email", "a@b.co", "--country", "usa"}
	_, err = execute(t, args...)
	require.NoError(t, err)
	_, err = execute(t, args...)
	require.EqualError(t, err, "Email already registered")
}
