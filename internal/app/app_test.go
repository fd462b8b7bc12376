package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	intconfig "busbooking/internal/config"
	"busbooking/internal/domain/models"
	"busbooking/internal/offline"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offlineApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	a, err := BuildWith(context.Background(), intconfig.Env{JWTSecret: "x", ProbeTimeout: time.Second}, nil, offline.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestSyncOnceSkipsWithoutAuthority(t *testing.T) {
	a := offlineApp(t)
	ctx := context.Background()

	_, ran, err := a.SyncOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "nothing pending")

	_, err = a.Store.Users.Append(ctx, models.PendingUser{
		Username: "lito", Email: "lito@example.com", PasswordHash: "$2a$10$abc", FullName: "Lito Cruz",
	})
	require.NoError(t, err)

	_, ran, err = a.SyncOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "authority unreachable")

	n, err := a.Store.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunSyncLoopStopsWithContext(t *testing.T) {
	a := offlineApp(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.RunSyncLoop(ctx, 10*time.Millisecond) }()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sync loop did not stop")
	}
}

func TestRouterServesOffline(t *testing.T) {
	a := offlineApp(t)
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/connection", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"online":false`)
}
