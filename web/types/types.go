package types

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a single question or answer stored in the DB. HTML carries
// the rendered form of the content for history display.
type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	HTML      string    `json:"html,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one chat conversation.
type Session struct {
	ID         uuid.UUID `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	Title      string    `json:"title"`
	IsActive   bool      `json:"is_active"`
}

// ChatRequest is the POST /api/chat body.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question" binding:"required"`
}

// ChatResponse is the answer payload.
type ChatResponse struct {
	SessionID  string `json:"session_id"`
	Answer     string `json:"answer"`
	AnswerHTML string `json:"answer_html,omitempty"`
	Sequence   uint64 `json:"sequence"`
}

// RefreshResponse reports the outcome of a data refresh.
type RefreshResponse struct {
	InventoryRecords int       `json:"inventory_records"`
	RequestRecords   int       `json:"request_records"`
	Projects         int       `json:"projects"`
	Items            int       `json:"items"`
	RefreshedAt      time.Time `json:"refreshed_at"`
}
