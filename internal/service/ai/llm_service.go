package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/kannada-chat/backend/internal/config"
	"github.com/zhouzirui/kannada-chat/backend/internal/logger"
	"github.com/zhouzirui/kannada-chat/backend/internal/model/chat"
)

var (
	// ErrProviderUnavailable means no credentials were configured for the completion provider.
	ErrProviderUnavailable = errors.New("completion provider not configured")
	// ErrEmptyCompletion means the provider answered without any content.
	ErrEmptyCompletion = errors.New("completion provider returned an empty reply")
)

// Service sends assembled payloads to the chat model and returns the generated text.
type Service struct {
	cfg   config.AIConfig
	chain compose.Runnable[[]*schema.Message, *schema.Message]
}

// NewService creates the provider client described by cfg.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	if !cfg.Enabled() {
		return nil, ErrProviderUnavailable
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return NewServiceWithModel(ctx, chatModel, cfg)
}

// NewServiceWithModel wraps an existing chat model.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, cfg config.AIConfig) (*Service, error) {
	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		cfg:   cfg,
		chain: runnable,
	}, nil
}

// Complete runs one generation over payload. Every failure is returned as a single wrapped error;
// nothing is retried.
func (s *Service) Complete(ctx context.Context, payload []chat.Message) (string, error) {
	if s == nil || s.chain == nil {
		return "", ErrProviderUnavailable
	}

	response, err := s.chain.Invoke(ctx, toSchemaMessages(payload), compose.WithChatModelOption(s.options()...))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", ErrEmptyCompletion
	}

	logger.Log.Debugf("[ai] generated response provider=%s model=%s turns=%d length=%d",
		s.cfg.Provider, s.cfg.Model, len(payload), len(response.Content))
	return response.Content, nil
}

func (s *Service) options() []model.Option {
	opts := []model.Option{
		model.WithTemperature(float32(s.cfg.Temperature)),
		model.WithMaxTokens(s.cfg.MaxTokens),
	}
	if s.cfg.Model != "" {
		opts = append(opts, model.WithModel(s.cfg.Model))
	}
	return opts
}

func toSchemaMessages(payload []chat.Message) []*schema.Message {
	messages := make([]*schema.Message, 0, len(payload))
	for _, msg := range payload {
		switch msg.Role {
		case chat.RoleSystem:
			messages = append(messages, schema.SystemMessage(msg.Content))
		case chat.RoleUser:
			messages = append(messages, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return messages
}
