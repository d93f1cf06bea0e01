package chat_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/healthchat/internal/model/chat"
)

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "hello", chat.DeriveTitle("hello"))

	exact := strings.Repeat("a", 30)
	assert.Equal(t, exact, chat.DeriveTitle(exact))

	long := strings.Repeat("b", 45)
	got := chat.DeriveTitle(long)
	assert.Equal(t, strings.Repeat("b", 30)+"...", got)
	assert.NotEqual(t, long, got)
}

func TestDeriveTitleCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 31)
	assert.Equal(t, strings.Repeat("é", 30)+"...", chat.DeriveTitle(text))
}

func TestNewSessionIDsAreTimeOrdered(t *testing.T) {
	a := chat.NewSession()
	b := chat.NewSession()

	require.NotEqual(t, a.ID, b.ID)
	assert.Less(t, a.ID, b.ID)
	assert.Equal(t, chat.DefaultTitle, a.Title)
	assert.Empty(t, a.Messages)
	assert.False(t, a.Titled())
}

func TestStateCloneIsDeep(t *testing.T) {
	s := chat.NewSession()
	s.Append(chat.SenderUser, "hi")
	st := chat.State{Sessions: []*chat.Session{s}, ActiveID: s.ID}

	c := st.Clone()
	s.Append(chat.SenderBot, "hello")

	require.Len(t, c.Sessions, 1)
	assert.Len(t, c.Sessions[0].Messages, 1)
	assert.Equal(t, s.ID, c.ActiveID)
}

func TestSetTitleMarksSessionNamed(t *testing.T) {
	s := chat.NewSession()
	s.SetTitle(chat.DefaultTitle)

	assert.True(t, s.Titled())
	assert.Equal(t, chat.DefaultTitle, s.Title)
	assert.True(t, s.Clone().Titled())
}
