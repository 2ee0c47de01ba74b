package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/cryptox"
	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/auth"
	"github.com/ISTE-SCTCE/Admin/internal/server/config"
	"github.com/ISTE-SCTCE/Admin/internal/server/metrics"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/notify"
	"github.com/ISTE-SCTCE/Admin/internal/server/presence"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/users"
	"github.com/ISTE-SCTCE/Admin/internal/server/store"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	backend   store.Backend
	rm        repomanager.RepositoryManager
	metrics   *metrics.Metrics
	tracker   *presence.Tracker
	hub       *notify.Hub
	directory *DirectoryService
	users     *UserService
	messages  *MessageService
	now       time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWith(t, nil)
}

// newEnvWith builds the env over a memory store whose collections read the
// env clock. wrap, when set, decorates the repository manager.
func newEnvWith(t *testing.T, wrap func(repomanager.RepositoryManager) repomanager.RepositoryManager) *env {
	t.Helper()

	e := &env{metrics: metrics.New(), hub: notify.NewHub(), now: t0}
	t.Cleanup(e.hub.Close)

	e.backend = store.NewMemoryStore()
	var rm repomanager.RepositoryManager = repomanager.NewStoreRepositoryManager(e.backend, store.WithClock(e.clock))
	if wrap != nil {
		rm = wrap(rm)
	}
	e.rm = rm

	cfg := &config.Config{}
	cfg.LoadDefaults()

	log := logging.Nop()
	e.tracker = presence.NewTracker(rm.Users(), cfg.PresenceWindow, log).WithClock(e.clock)
	e.directory = NewDirectoryService(rm, e.tracker, e.metrics, log)
	e.directory.now = e.clock
	e.users = NewUserService(rm, e.directory, cfg, log)
	e.messages = NewMessageService(rm, e.hub, e.metrics, log)
	return e
}

func (e *env) clock() time.Time { return e.now }

// seedUser stores a user with a plaintext password, the way legacy data
// files hold them, and its member.
func (e *env) seedUser(t *testing.T, name, email, role string) *auth.Identity {
	t.Helper()
	ctx := context.Background()

	u, err := e.rm.Users().Create(ctx, &models.User{Name: name, Email: email, Role: role, Password: "pw-" + name})
	require.NoError(t, err)
	_, _, err = e.directory.Provision(ctx, u, nil)
	require.NoError(t, err)

	id := IdentityOf(u)
	return &id
}

func (e *env) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := e.rm.Users().FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return u
}

func (e *env) member(t *testing.T, email string) *models.Member {
	t.Helper()
	m, err := e.rm.Members().FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return m
}

func passwordMatches(t *testing.T, stored, pw string) bool {
	t.Helper()
	ok, err := cryptox.VerifyPassword(stored, pw)
	require.NoError(t, err)
	return ok
}

// brokenUsers fails user updates, leaving reads working.
type brokenUsers struct {
	users.Repository
}

func (brokenUsers) Update(context.Context, int64, func(*models.User) error) (*models.User, error) {
	return nil, errors.New("disk on fire")
}

type brokenUsersManager struct {
	repomanager.RepositoryManager
}

func (m brokenUsersManager) Users() users.Repository {
	return brokenUsers{m.RepositoryManager.Users()}
}
