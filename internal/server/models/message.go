package models

import "time"

// Message is an immutable direct message.
type Message struct {
	ID        int64     `json:"id"`
	From      Party     `json:"from"`
	To        Party     `json:"to"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func (m *Message) SetID(id int64) { m.ID = id }

func (m *Message) Stamp(now time.Time) {
	if m.Timestamp.IsZero() {
		m.Timestamp = now
	}
}

// ThreadMessage is a message as seen by one participant of a thread.
type ThreadMessage struct {
	Message
	IsMine bool `json:"isMine"`
}
