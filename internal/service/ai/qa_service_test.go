package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/healthchat/internal/model/knowledge"
)

type fakeChatModel struct {
	reply string
	err   error
	seen  []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.seen = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func newTestService(t *testing.T, fake *fakeChatModel) *Service {
	t.Helper()
	svc, err := NewServiceWithModel(context.Background(), fake, knowledge.NewMemoryStore(knowledge.Seed()))
	require.NoError(t, err)
	return svc
}

func TestAnswerUsesKnowledgeContext(t *testing.T) {
	fake := &fakeChatModel{reply: "  Take ORS in small sips.  "}
	svc := newTestService(t, fake)

	got, err := svc.Answer(context.Background(), "how do I use ors", "st")
	require.NoError(t, err)
	assert.Equal(t, "Take ORS in small sips.", got)

	require.Len(t, fake.seen, 2)
	assert.Equal(t, schema.System, fake.seen[0].Role)
	assert.Contains(t, fake.seen[0].Content, "Sesotho")
	assert.Contains(t, fake.seen[0].Content, "- ors: Oral rehydration solution")
	assert.Equal(t, "how do I use ors", fake.seen[1].Content)
}

func TestAnswerDeclined(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{reply: "unknown"})
	got, err := svc.Answer(context.Background(), "who won the match", "en")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAnswerError(t *testing.T) {
	svc := newTestService(t, &fakeChatModel{err: errors.New("quota exceeded")})
	_, err := svc.Answer(context.Background(), "what is tb", "en")
	require.Error(t, err)
}

func TestPromptBuilderDefaultsToEnglish(t *testing.T) {
	p := NewPromptBuilder(knowledge.NewMemoryStore(nil))
	assert.Contains(t, p.System("fr"), "in English")
}
