package services

import (
	"context"
	"fmt"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/auth"
	"github.com/ISTE-SCTCE/Admin/internal/server/metrics"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/notify"
	"github.com/ISTE-SCTCE/Admin/internal/server/policy"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
)

// MessageService appends to and reads from the direct message log.
type MessageService struct {
	repomanager repomanager.RepositoryManager
	hub         *notify.Hub
	metrics     *metrics.Metrics
	logger      logging.Logger
}

func NewMessageService(m repomanager.RepositoryManager, hub *notify.Hub, met *metrics.Metrics, logger logging.Logger) *MessageService {
	return &MessageService{
		repomanager: m,
		hub:         hub,
		metrics:     met,
		logger:      logger.With("module", "messages"),
	}
}

// Send stores a message from the caller to the given party and notifies the
// recipient's open streams. Empty content is allowed.
func (s *MessageService) Send(ctx context.Context, caller *auth.Identity, to models.Party, content string) (*models.Message, error) {
	u, err := resolveCaller(ctx, s.repomanager, caller)
	if err != nil {
		return nil, err
	}
	if to.IsZero() {
		return nil, fmt.Errorf("%w: recipient is required", common.ErrValidation)
	}

	msg, err := s.repomanager.Messages().Create(ctx, &models.Message{
		From:    models.UserParty(u.ID),
		To:      to,
		Content: content,
	})
	if err != nil {
		return nil, fmt.Errorf("error saving message: %w", err)
	}

	s.metrics.MessageSent()
	if s.hub != nil {
		n := s.hub.Publish(*msg)
		s.logger.Debug(ctx, "message sent", "message_id", msg.ID, "to", to.String(), "delivered", n)
	}

	return msg, nil
}

// FetchThread returns, in insertion order, the messages exchanged between
// the caller and counterparty. An Admin caller also sees the counterparty's
// exchange with the legacy admin inbox. IsMine marks what the caller sent.
func (s *MessageService) FetchThread(ctx context.Context, caller *auth.Identity, counterparty models.Party) ([]models.ThreadMessage, error) {
	u, err := resolveCaller(ctx, s.repomanager, caller)
	if err != nil {
		return nil, err
	}

	all, err := s.repomanager.Messages().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}

	me := models.UserParty(u.ID)
	isAdmin := policy.ParseRole(u.Role) == policy.RoleAdmin

	mine := func(p models.Party) bool {
		return p == me || (isAdmin && p.IsLegacyAdmin())
	}

	thread := make([]models.ThreadMessage, 0)
	for _, m := range all {
		if (mine(m.From) && m.To == counterparty) || (m.From == counterparty && mine(m.To)) {
			thread = append(thread, models.ThreadMessage{Message: m, IsMine: mine(m.From)})
		}
	}

	return thread, nil
}
