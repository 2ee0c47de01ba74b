package models

import "time"

// Event is a calendar entry or announcement. Description is markdown.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *Event) SetID(id int64) { e.ID = id }

func (e *Event) Stamp(now time.Time) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
}

type EventView struct {
	Event
	DescriptionHTML string `json:"description_html"`
}
