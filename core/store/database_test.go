package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDatabaseStore(t *testing.T) *databaseStore {
	cfg := DatabaseConfig{
		Driver: "sqlite",
		Name:   filepath.Join(t.TempDir(), "store.db"),
	}
	s, err := newDatabaseStore(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDatabaseStoreVisitRoundTrip(t *testing.T) {
	s := newTestDatabaseStore(t)

	require.NoError(t, s.AddVisit(testVisit("v1")))

	visits, err := s.Visits()
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, "v1", visits[0].ID)
	assert.Equal(t, "Cleaner", visits[0].Name)
	assert.Equal(t, "1234", visits[0].Phone)
	require.Len(t, visits[0].ModeChanges, 2)
	assert.Equal(t, "checkin", visits[0].ModeChanges[0].Mode)

	require.NoError(t, s.DeleteVisit("v1"))
	visits, err = s.Visits()
	require.NoError(t, err)
	assert.Empty(t, visits)
}

func TestDatabaseStoreDeleteMissingVisit(t *testing.T) {
	s := newTestDatabaseStore(t)

	assert.ErrorIs(t, s.DeleteVisit("nope"), ErrNotFound)
}

func TestDatabaseStoreSkipsMalformedVisitRow(t *testing.T) {
	s := newTestDatabaseStore(t)

	require.NoError(t, s.AddVisit(testVisit("good")))
	require.NoError(t, s.db.Create(&visitRecord{ID: "bad", ModeChanges: "{not json"}).Error)

	visits, err := s.Visits()
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, "good", visits[0].ID)
}

func TestDatabaseStoreOverrides(t *testing.T) {
	s := newTestDatabaseStore(t)
	at := time.Date(2026, 8, 18, 16, 0, 0, 0, time.UTC)

	require.NoError(t, s.SetOverride("RES1", at))

	overrides, err := s.Overrides()
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.True(t, overrides["RES1"].Equal(at))

	// Save is an upsert: setting again replaces the instant.
	require.NoError(t, s.SetOverride("RES1", at.Add(time.Hour)))
	overrides, err = s.Overrides()
	require.NoError(t, err)
	assert.True(t, overrides["RES1"].Equal(at.Add(time.Hour)))

	require.NoError(t, s.DeleteOverride("RES1"))
	require.NoError(t, s.DeleteOverride("RES1"))

	overrides, err = s.Overrides()
	require.NoError(t, err)
	assert.Empty(t, overrides)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(Config{Backend: "redis"}, zap.NewNop())
	assert.Error(t, err)
}

func TestConfigIsValidBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    bool
	}{
		{"File", BackendFile, true},
		{"Database", BackendDatabase, true},
		{"Invalid", "redis", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{Backend: tt.backend}
			assert.Equal(t, tt.want, c.IsValidBackend())
		})
	}
}
