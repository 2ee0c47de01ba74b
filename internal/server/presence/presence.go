// Package presence derives whether members are active from their last
// heartbeat and records new heartbeats.
package presence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/auth"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/users"
)

// DefaultWindow is how long after a heartbeat a user still counts as active.
const DefaultWindow = 5 * time.Minute

// DeriveStatus is DeriveStatusWithin using DefaultWindow.
func DeriveStatus(lastSeen *time.Time, now time.Time) models.PresenceStatus {
	return DeriveStatusWithin(lastSeen, now, DefaultWindow)
}

// DeriveStatusWithin returns active iff now-lastSeen is strictly less than
// window. A missing timestamp is offline.
func DeriveStatusWithin(lastSeen *time.Time, now time.Time, window time.Duration) models.PresenceStatus {
	if lastSeen == nil || lastSeen.IsZero() {
		return models.StatusOffline
	}
	if now.Sub(*lastSeen) < window {
		return models.StatusActive
	}
	return models.StatusOffline
}

// HeartbeatObserver is told about every recorded heartbeat.
type HeartbeatObserver interface {
	Heartbeat()
}

type Tracker struct {
	users    users.Repository
	window   time.Duration
	now      func() time.Time
	logger   logging.Logger
	observer HeartbeatObserver
}

func NewTracker(repo users.Repository, window time.Duration, logger logging.Logger) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{
		users:  repo,
		window: window,
		now:    time.Now,
		logger: logger.With("module", "presence"),
	}
}

// WithClock replaces the tracker's time source.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

func (t *Tracker) WithObserver(o HeartbeatObserver) *Tracker {
	t.observer = o
	return t
}

func (t *Tracker) Window() time.Duration { return t.window }

// RecordHeartbeat stamps the caller's last_seen with the current time and
// returns it. A nil caller, or one whose user no longer exists, is
// common.ErrNotAuthenticated.
func (t *Tracker) RecordHeartbeat(ctx context.Context, caller *auth.Identity) (time.Time, error) {
	if caller == nil || caller.UserID <= 0 {
		return time.Time{}, common.ErrNotAuthenticated
	}

	now := t.now().UTC()
	if err := t.users.TouchLastSeen(ctx, caller.UserID, now); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return time.Time{}, fmt.Errorf("%w: user %d no longer exists", common.ErrNotAuthenticated, caller.UserID)
		}
		return time.Time{}, fmt.Errorf("record heartbeat: %w", err)
	}

	if t.observer != nil {
		t.observer.Heartbeat()
	}
	t.logger.Debug(ctx, "heartbeat", "user_id", caller.UserID)

	return now, nil
}

// Status derives the user's presence at the tracker's current time. A nil
// user is offline.
func (t *Tracker) Status(u *models.User) models.PresenceStatus {
	if u == nil {
		return models.StatusOffline
	}
	return DeriveStatusWithin(u.LastSeen, t.now(), t.window)
}
