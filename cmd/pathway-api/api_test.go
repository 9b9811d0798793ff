package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/pathway/pkg/channels/gochannel"
	"github.com/dukex/pathway/pkg/eventbus"
	"github.com/dukex/pathway/pkg/events"
	"github.com/dukex/pathway/pkg/models"
	"github.com/dukex/pathway/pkg/persistence/file"
	"github.com/dukex/pathway/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	api := NewAPI(slog.Default(), services.Options{Persistence: file.NewPersistence(t.TempDir())})

	return api.App()
}

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestAPI_RootEndpoint(t *testing.T) {
	status, body := get(t, setupTestApp(t), "/")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Pathway API", body)
}

func TestAPI_HealthCheck(t *testing.T) {
	status, body := get(t, setupTestApp(t), "/livez")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)
}

func TestAPI_Metrics(t *testing.T) {
	app := setupTestApp(t)

	status, _ := get(t, app, "/workflows")
	require.Equal(t, http.StatusOK, status)

	status, body := get(t, app, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "go_goroutines")
}

func TestAPI_GetWorkflows_Empty(t *testing.T) {
	status, body := get(t, setupTestApp(t), "/workflows")

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{
		"workflows": [],
		"total_count": 0,
		"has_next_page": false,
		"pagination": {"limit": 0, "offset": 0},
		"sorting": {"sort_by": "", "sort_order": ""}
	}`, body)
}

func TestRegisterEventLoggers(t *testing.T) {
	pubSub := gochannel.NewTestChannel(watermill.NopLogger{})

	bus := eventbus.NewWatermillEventBus(pubSub, pubSub)

	t.Cleanup(func() { _ = bus.Close() })

	require.NoError(t, registerEventLoggers(t.Context(), bus, slog.Default()))

	notification := &models.Notification{ID: "n-1", Kind: models.NotificationTaskAssigned, WorkflowID: "wf-1"}
	require.NoError(t, bus.Publish(t.Context(), "n-1", events.NewNotificationEmitted(notification)))
}
