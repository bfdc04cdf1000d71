package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/kannada-chat/backend/internal/config"
	"github.com/zhouzirui/kannada-chat/backend/internal/model/chat"
)

func testAIConfig() config.AIConfig {
	return config.AIConfig{
		Provider:    config.ProviderOpenAI,
		APIKey:      "sk-test",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   500,
	}
}

func TestCompleteSendsPayloadInOrderWithFixedOptions(t *testing.T) {
	ctx := context.Background()
	fake := &fakeModel{reply: schema.AssistantMessage("ನಮಸ್ಕಾರ!", nil)}

	svc, err := NewServiceWithModel(ctx, fake, testAIConfig())
	require.NoError(t, err)

	payload := []chat.Message{
		chat.SystemMessage(SystemPrompt(LanguageKannada)),
		chat.UserMessage("hi"),
		chat.AssistantMessage("hello"),
		chat.UserMessage("ನಮಸ್ಕಾರ"),
	}

	reply, err := svc.Complete(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, "ನಮಸ್ಕಾರ!", reply)

	require.Equal(t, 1, fake.calls)
	require.Len(t, fake.input, 4)
	assert.Equal(t, schema.System, fake.input[0].Role)
	assert.Equal(t, schema.User, fake.input[1].Role)
	assert.Equal(t, schema.Assistant, fake.input[2].Role)
	assert.Equal(t, "ನಮಸ್ಕಾರ", fake.input[3].Content)

	require.NotNil(t, fake.opts.Temperature)
	assert.InDelta(t, 0.7, *fake.opts.Temperature, 1e-6)
	require.NotNil(t, fake.opts.MaxTokens)
	assert.Equal(t, 500, *fake.opts.MaxTokens)
	require.NotNil(t, fake.opts.Model)
	assert.Equal(t, "gpt-4o-mini", *fake.opts.Model)
}

func TestCompletePropagatesProviderFailure(t *testing.T) {
	ctx := context.Background()
	fake := &fakeModel{err: errors.New("quota exceeded")}

	svc, err := NewServiceWithModel(ctx, fake, testAIConfig())
	require.NoError(t, err)

	_, err = svc.Complete(ctx, []chat.Message{chat.UserMessage("hi")})
	require.Error(t, err)
	assert.Equal(t, 1, fake.calls, "failures must not be retried")
}

func TestCompleteRejectsEmptyReply(t *testing.T) {
	ctx := context.Background()
	fake := &fakeModel{reply: schema.AssistantMessage("   ", nil)}

	svc, err := NewServiceWithModel(ctx, fake, testAIConfig())
	require.NoError(t, err)

	_, err = svc.Complete(ctx, []chat.Message{chat.UserMessage("hi")})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestNewServiceWithoutCredentials(t *testing.T) {
	_, err := NewService(context.Background(), config.AIConfig{Provider: config.ProviderOpenAI})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestNilServiceIsUnavailable(t *testing.T) {
	var svc *Service
	_, err := svc.Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}
