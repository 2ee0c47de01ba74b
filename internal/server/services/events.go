package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ISTE-SCTCE/Admin/internal/common"
	"github.com/ISTE-SCTCE/Admin/internal/logging"
	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"github.com/ISTE-SCTCE/Admin/internal/server/repositories/repomanager"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// EventService manages calendar entries and announcements. Descriptions are
// markdown; listings carry them rendered to HTML with raw HTML stripped.
type EventService struct {
	repomanager repomanager.RepositoryManager
	markdown    goldmark.Markdown
	logger      logging.Logger
}

func NewEventService(m repomanager.RepositoryManager, logger logging.Logger) *EventService {
	return &EventService{
		repomanager: m,
		markdown:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:      logger.With("module", "events"),
	}
}

func (s *EventService) List(ctx context.Context) ([]models.EventView, error) {
	events, err := s.repomanager.Events().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %w", err)
	}

	views := make([]models.EventView, 0, len(events))
	for _, e := range events {
		html, err := s.Render(e.Description)
		if err != nil {
			s.logger.Warn(ctx, "event description not rendered", "event_id", e.ID, "error", err)
		}
		views = append(views, models.EventView{Event: e, DescriptionHTML: html})
	}
	return views, nil
}

func (s *EventService) Create(ctx context.Context, e models.Event) (*models.Event, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	e.ID = 0

	created, err := s.repomanager.Events().Create(ctx, &e)
	if err != nil {
		return nil, fmt.Errorf("error creating event: %w", err)
	}
	return created, nil
}

// Render converts markdown to HTML.
func (s *EventService) Render(md string) (string, error) {
	if md == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
