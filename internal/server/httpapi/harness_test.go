package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/blob"
	"github.com/ISTE-SCTCE/Admin/internal/server/config"
	"github.com/ISTE-SCTCE/Admin/internal/server/metrics"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/notify"
	"github.com/ISTE-SCTCE/Admin/internal/server/presence"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
	"github.com/ISTE-SCTCE/Admin/internal/server/services"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t       *testing.T
	srv     *httptest.Server
	server  *Server
	rm      repomanager.RepositoryManager
	metrics *metrics.Metrics
	now     time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		t:       t,
		rm:      repomanager.NewStoreRepositoryManager(store.NewMemoryStore()),
		metrics: metrics.New(),
		now:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	log := logging.Nop()

	disk, err := blob.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	hub := notify.NewHub()
	t.Cleanup(hub.Close)

	tracker := presence.NewTracker(h.rm.Users(), cfg.PresenceWindow, log).
		WithClock(func() time.Time { return h.now }).
		WithObserver(h.metrics)
	directory := services.NewDirectoryService(h.rm, tracker, h.metrics, log)

	h.server = NewHTTPServer(Options{MaxUploadBytes: 1 << 20, KeepAlive: time.Hour}, Services{
		Users:     services.NewUserService(h.rm, directory, cfg, log),
		Directory: directory,
		Messages:  services.NewMessageService(h.rm, hub, h.metrics, log),
		Files:     services.NewFileService(h.rm, disk, h.metrics, log),
		Events:    services.NewEventService(h.rm, log),
		Presence:  tracker,
		Hub:       hub,
	}, h.metrics, log)

	h.srv = httptest.NewServer(h.server.Handler())
	t.Cleanup(h.srv.Close)
	return h
}

// session stores a user and its member and returns a bearer token for it.
func (h *harness) session(name, email, role string) (string, int64) {
	h.t.Helper()
	ctx := context.Background()

	u, err := h.rm.Users().Create(ctx, &models.User{Name: name, Email: email, Role: role, Password: "pw"})
	require.NoError(h.t, err)
	_, _, err = h.server.Directory.Provision(ctx, u, nil)
	require.NoError(h.t, err)

	sess, err := h.server.Users.IssueToken(u)
	require.NoError(h.t, err)
	return sess.Token, u.ID
}

func (h *harness) memberID(email string) int64 {
	h.t.Helper()
	m, err := h.rm.Members().FindByEmail(context.Background(), email)
	require.NoError(h.t, err)
	return m.ID
}

func (h *harness) request(method, path, token string, body any) *http.Request {
	h.t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(h.t, err)
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, h.srv.URL+path, rd)
	require.NoError(h.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (h *harness) do(method, path, token string, body any) *http.Response {
	h.t.Helper()
	resp, err := h.srv.Client().Do(h.request(method, path, token, body))
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
