package visits

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"guesthub/core/hub/mocks"
	"guesthub/core/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) (*fiber.App, *Service, *memStore) {
	svc, st := newTestService(new(mocks.Client), "")
	app := fiber.New()
	NewHandler(svc, "America/Denver", zap.NewNop()).RegisterRoutes(app)
	return app, svc, st
}

func TestHandleAdd(t *testing.T) {
	app, _, st := setupTestApp(t)

	body := `{"name":"Cleaner","phone":"1234","modeChanges":[{"time":"2026-08-11T10:00:00Z","mode":"checkin"},{"time":"2026-08-11T14:00:00Z","mode":"checkout"}]}`
	req := httptest.NewRequest("POST", "/visits", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var added store.Visit
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&added))
	assert.NotEmpty(t, added.ID)

	persisted, err := st.Visits()
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestHandleAddRejectsBadTag(t *testing.T) {
	app, _, _ := setupTestApp(t)

	body := `{"modeChanges":[{"time":"2026-08-11T10:00:00Z","mode":"party"}]}`
	req := httptest.NewRequest("POST", "/visits", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleList(t *testing.T) {
	app, _, st := setupTestApp(t)
	require.NoError(t, st.AddVisit(store.Visit{ID: "v1", Name: "Cleaner"}))

	req := httptest.NewRequest("GET", "/visits", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var visits []store.Visit
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&visits))
	require.Len(t, visits, 1)
	assert.Equal(t, "v1", visits[0].ID)
}

func TestHandleRemove(t *testing.T) {
	app, _, st := setupTestApp(t)
	require.NoError(t, st.AddVisit(store.Visit{ID: "v1"}))

	req := httptest.NewRequest("DELETE", "/visits/v1", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	persisted, err := st.Visits()
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestHandleRemoveUnknownVisit(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("DELETE", "/visits/nope", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandleTimezone(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/timezone", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "America/Denver", body["timezone"])
}
