package handler_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/comfund/backend/internal/application/notify"
	"github.com/comfund/backend/internal/interfaces/http/handler"
	"github.com/comfund/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sseEvent struct {
	name string
	data string
}

// openStream connects to the change stream and returns a reader over its events
func openStream(ctx context.Context, t *testing.T, srv *httptest.Server, url string, token string) (*http.Response, *bufio.Reader) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp, bufio.NewReader(resp.Body)
}

// nextEvent reads lines until a complete event named name arrives
func nextEvent(t *testing.T, r *bufio.Reader, name string) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err, "stream ended before %q", name)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if ev.name == name {
				return ev
			}
			ev = sseEvent{}
		}
	}
}

func TestStreamHandler_DeliversChanges(t *testing.T) {
	f := newAPIFixture(t)
	srv := httptest.NewServer(f.engine)
	t.Cleanup(srv.Close)
	ctx := testutil.ContextWithTimeout(t, 10*time.Second)

	resp, r := openStream(ctx, t, srv, streamPath, f.adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	hello := nextEvent(t, r, handler.EventConnected)
	assert.Contains(t, hello.data, "clientId")
	testutil.RequireEventually(t, func() bool { return f.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	entry := f.createEntry(t, "Income", 100, "2025-01-01")

	ev := nextEvent(t, r, handler.EventChanged)
	var change notify.Change
	require.NoError(t, json.Unmarshal([]byte(ev.data), &change))
	assert.Equal(t, notify.CollectionLedger, change.Collection)
	assert.Equal(t, "saved", change.Action)
	assert.Equal(t, entry.ID.String(), change.ID)
}

func TestStreamHandler_QueryToken(t *testing.T) {
	f := newAPIFixture(t)
	srv := httptest.NewServer(f.engine)
	t.Cleanup(srv.Close)
	ctx := testutil.ContextWithTimeout(t, 10*time.Second)

	resp, r := openStream(ctx, t, srv, streamPath+"?access_token="+f.adminToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	nextEvent(t, r, handler.EventConnected)

	// the query token is only honoured on the stream
	w := f.do(t, http.MethodGet, "/api/v1/auth/me?access_token="+f.adminToken, "", nil)
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "TOKEN_INVALID")
}

func TestStreamHandler_Full(t *testing.T) {
	f := newAPIFixture(t, withMaxStreamClients(1))
	srv := httptest.NewServer(f.engine)
	t.Cleanup(srv.Close)
	ctx := testutil.ContextWithTimeout(t, 10*time.Second)

	_, r := openStream(ctx, t, srv, streamPath, f.adminToken)
	nextEvent(t, r, handler.EventConnected)

	resp, _ := openStream(ctx, t, srv, streamPath, f.adminToken)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var env testutil.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "SERVICE_BUSY", env.Error.Code)
}

func TestStreamHandler_ShuttingDown(t *testing.T) {
	f := newAPIFixture(t)
	f.hub.Close()

	w := f.do(t, http.MethodGet, streamPath, f.adminToken, nil)
	testutil.AssertErrorCode(t, w, http.StatusServiceUnavailable, "SERVICE_BUSY")
}

func TestStreamHandler_RequiresToken(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, streamPath, "", nil)
	testutil.AssertErrorCode(t, w, http.StatusUnauthorized, "TOKEN_INVALID")
}
