package ai

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/healthchat/internal/config"
	"github.com/zhouzirui/healthchat/internal/model/knowledge"
)

// Service answers questions the topic matcher could not resolve, using only
// the knowledge base text as context.
type Service struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	prompt  *PromptBuilder
	timeout time.Duration
}

// NewService creates the chat model from cfg and compiles the QA chain.
func NewService(ctx context.Context, cfg config.AIConfig, store knowledge.Store) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "create chat model")
	}
	svc, err := NewServiceWithModel(ctx, chatModel, store)
	if err != nil {
		return nil, err
	}
	svc.timeout = cfg.Timeout
	return svc, nil
}

// NewServiceWithModel compiles the QA chain around an existing chat model.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, store knowledge.Store) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "compile qa chain")
	}

	return &Service{chain: runnable, prompt: NewPromptBuilder(store)}, nil
}

// Answer returns the model's reply, or an empty string if it declined.
func (s *Service) Answer(ctx context.Context, question, lang string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	input := map[string]any{
		"system": s.prompt.System(lang),
		"query":  question,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", errors.Wrap(err, "run qa chain")
	}

	answer := strings.TrimSpace(response.Content)
	if strings.EqualFold(answer, NoAnswer) {
		answer = ""
	}
	log.Debug().Str("lang", lang).Int("length", len(answer)).Msg("qa answer generated")
	return answer, nil
}
