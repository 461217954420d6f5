package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) Client {
	return NewClient(Config{BaseURL: srv.URL, AccessToken: "secret", TimeoutSeconds: 5})
}

func TestDevices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/devices", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("access_token"))
		w.Write([]byte(`[{"id":"12","label":"Front Door","name":"Z-Wave Lock"}]`))
	}))
	defer srv.Close()

	devices, err := newTestClient(srv).Devices(context.Background())

	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "12", devices[0].ID)
	assert.Equal(t, "Front Door", devices[0].Label)
}

func TestSetCodeJoinsArguments(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := newTestClient(srv).SetCode(context.Background(), "12", "3", "1234", "HMABC")

	require.NoError(t, err)
	assert.Equal(t, "/devices/12/setCode/3%2C1234%2CHMABC", gotPath)
}

func TestDeleteCode(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := newTestClient(srv).DeleteCode(context.Background(), "12", "3")

	require.NoError(t, err)
	assert.Equal(t, "/devices/12/deleteCode/3", gotPath)
}

func TestLockCodesParsesEmbeddedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/devices/12/getCodes", r.URL.Path)
		// The code table arrives as a JSON document inside the attribute value.
		w.Write([]byte(`{"attributes":[
			{"name":"battery","currentValue":"88"},
			{"name":"lockCodes","currentValue":"{\"1\":{\"name\":\"Owner\",\"code\":\"9999\"},\"3\":{\"name\":\"HMABC\",\"code\":\"1234\"}}"}
		]}`))
	}))
	defer srv.Close()

	codes, err := newTestClient(srv).LockCodes(context.Background(), "12")

	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, LockCode{Name: "HMABC", Code: "1234"}, codes["3"])
}

func TestLockCodesMalformedValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"attributes":[{"name":"lockCodes","currentValue":"not json"}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).LockCodes(context.Background(), "12")

	assert.ErrorIs(t, err, ErrMalformedLockCodes)
}

func TestLockCodesMissingAttribute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"attributes":[{"name":"battery","currentValue":"88"}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).LockCodes(context.Background(), "12")

	assert.ErrorIs(t, err, ErrMalformedLockCodes)
}

func TestModesAndActivate(t *testing.T) {
	var activated string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/modes":
			w.Write([]byte(`[{"id":"1","name":"Home","active":true},{"id":"2","name":"Away","active":false}]`))
		case "/modes/2":
			activated = "2"
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := newTestClient(srv)

	modes, err := client.Modes(context.Background())
	require.NoError(t, err)
	require.Len(t, modes, 2)
	assert.True(t, modes[0].Active)

	require.NoError(t, client.ActivateMode(context.Background(), "2"))
	assert.Equal(t, "2", activated)
}

func TestNonOKStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Devices(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
