package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zhouzirui/kannada-chat/backend/internal/model/chat"
	"github.com/zhouzirui/kannada-chat/backend/internal/service/ai"
	"github.com/zhouzirui/kannada-chat/backend/internal/session"
)

// HistoryWindow is the number of stored turns sent to the provider with each request.
const HistoryWindow = 10

var (
	ErrEmptyMessage    = errors.New("message is required")
	ErrSessionRequired = errors.New("session id is required")
)

// Completer turns an assembled payload into generated text.
type Completer interface {
	Complete(ctx context.Context, payload []chat.Message) (string, error)
}

// Service encapsulates conversation state management on top of a session store.
//
// The full history is kept in the store and only trimmed when a payload is built.
type Service struct {
	store session.Store
}

// NewService binds the conversation manager to a session store.
func NewService(store session.Store) *Service {
	return &Service{store: store}
}

// BeginTurn stores the user's message and returns the provider payload: one system
// instruction followed by at most HistoryWindow of the most recent stored turns.
func (s *Service) BeginTurn(ctx context.Context, sessionID, language, userText string) ([]chat.Message, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, ErrEmptyMessage
	}
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	history, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history = history.Append(chat.UserMessage(userText))
	if err := s.store.Put(ctx, sessionID, history); err != nil {
		return nil, fmt.Errorf("failed to save user turn: %w", err)
	}

	tail := history.Tail(HistoryWindow)
	payload := make([]chat.Message, 0, len(tail)+1)
	payload = append(payload, chat.SystemMessage(ai.SystemPrompt(language)))
	payload = append(payload, tail...)
	return payload, nil
}

// RecordReply appends the assistant's reply to the stored history.
func (s *Service) RecordReply(ctx context.Context, sessionID, assistantText string) error {
	if sessionID == "" {
		return ErrSessionRequired
	}

	history, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := s.store.Put(ctx, sessionID, history.Append(chat.AssistantMessage(assistantText))); err != nil {
		return fmt.Errorf("failed to save assistant turn: %w", err)
	}
	return nil
}

// Reset empties the session's history. Calling it repeatedly is harmless.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionRequired
	}
	if err := s.store.Put(ctx, sessionID, chat.History{}); err != nil {
		return fmt.Errorf("failed to reset conversation: %w", err)
	}
	return nil
}

// Transcript returns the full stored history for the session.
func (s *Service) Transcript(ctx context.Context, sessionID string) (chat.History, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	return s.load(ctx, sessionID)
}

// Exchange runs one complete chat turn. The assistant reply is stored only when the
// completer succeeds; on failure the user turn stays in history without a reply.
func (s *Service) Exchange(ctx context.Context, completer Completer, sessionID, language, userText string) (string, error) {
	payload, err := s.BeginTurn(ctx, sessionID, language, userText)
	if err != nil {
		return "", err
	}

	reply, err := completer.Complete(ctx, payload)
	if err != nil {
		return "", err
	}

	if err := s.RecordReply(ctx, sessionID, reply); err != nil {
		return "", err
	}
	return reply, nil
}

func (s *Service) load(ctx context.Context, sessionID string) (chat.History, error) {
	history, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return chat.History{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return history, nil
}
