package services

import (
	"context"
	"sync"
	"time"

	"scm-agent/chatbot"
	"scm-agent/database"
	"scm-agent/web/format"
	"scm-agent/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatService answers questions against the current data snapshot and
// persists the exchange when a store is configured. Each session carries a
// monotonically increasing sequence number; an answer that resolves after a
// newer question was asked in the same session is reported stale so callers
// can drop it instead of showing answers out of order.
type ChatService struct {
	engine *chatbot.Engine
	data   *DataService
	store  *database.PostgresStore
	logger *zap.Logger

	mu        sync.Mutex
	sequences map[string]uint64
}

func NewChatService(engine *chatbot.Engine, data *DataService, store *database.PostgresStore, logger *zap.Logger) *ChatService {
	return &ChatService{
		engine:    engine,
		data:      data,
		store:     store,
		logger:    logger,
		sequences: make(map[string]uint64),
	}
}

// nextSequence issues the sequence number for a new question in a session.
func (c *ChatService) nextSequence(sessionID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sequences[sessionID]++
	return c.sequences[sessionID]
}

func (c *ChatService) latestSequence(sessionID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sequences[sessionID]
}

// Ask answers one question. The returned stale flag is true when a newer
// question arrived for the session while this one was being answered.
func (c *ChatService) Ask(ctx context.Context, sessionID, question string) (*types.ChatResponse, bool, error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	seq := c.nextSequence(sessionID)

	snap, err := c.data.Snapshot(ctx)
	if err != nil && snap == nil {
		return nil, false, err
	}

	answer := c.engine.Ask(ctx, question, snap.Dataset, snap.Lexicon)

	if c.latestSequence(sessionID) != seq {
		c.logger.Debug("discarding stale answer",
			zap.String("session_id", sessionID), zap.Uint64("sequence", seq))
		return nil, true, nil
	}

	resp := &types.ChatResponse{
		SessionID:  sessionID,
		Answer:     answer,
		AnswerHTML: format.ConvertToHTML(answer),
		Sequence:   seq,
	}
	c.persist(ctx, sessionID, question, resp)
	return resp, false, nil
}

// persist stores the question and answer as two messages. Persistence
// failures are logged, never surfaced to the asker.
func (c *ChatService) persist(ctx context.Context, sessionID, question string, resp *types.ChatResponse) {
	if c.store == nil {
		return
	}

	id, err := uuid.Parse(sessionID)
	if err != nil {
		c.logger.Warn("skipping persistence for malformed session id",
			zap.String("session_id", sessionID))
		return
	}
	if err := c.store.EnsureSession(ctx, id); err != nil {
		c.logger.Warn("failed to ensure session row",
			zap.String("session_id", sessionID), zap.Error(err))
		return
	}

	now := time.Now()
	messages := []types.ChatMessage{
		{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Role:      "user",
			Content:   question,
			CreatedAt: now,
		},
		{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Role:      "assistant",
			Content:   resp.Answer,
			HTML:      resp.AnswerHTML,
			CreatedAt: now,
		},
	}
	for _, msg := range messages {
		if err := c.store.CreateMessage(ctx, msg); err != nil {
			c.logger.Warn("failed to persist chat message",
				zap.String("session_id", sessionID), zap.Error(err))
			return
		}
	}
}

// History returns the stored messages for a session, oldest first.
func (c *ChatService) History(ctx context.Context, sessionID string) ([]types.ChatMessage, error) {
	if c.store == nil {
		return []types.ChatMessage{}, nil
	}
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, err
	}
	return c.store.GetMessagesBySession(ctx, id)
}
