package chatkit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salespage/chatkit/core"
	"github.com/salespage/chatkit/extract"
	"github.com/salespage/chatkit/internal/testutil"
	"github.com/salespage/chatkit/model"
	"github.com/salespage/chatkit/respond"
)

// stubExtractor serves the sample page without touching the network.
type stubExtractor struct {
	calls int
	fail  bool
}

// Interface compliance (compile-time assertions)
var (
	_ core.Extractor  = (*stubExtractor)(nil)
	_ markupExtractor = (*stubExtractor)(nil)
	_ core.Extractor  = (*extract.HTTPExtractor)(nil)
)

func (s *stubExtractor) Extract(ctx context.Context, url string) (core.PageData, string, error) {
	data, text, _, err := s.ExtractWithMarkup(ctx, url)
	return data, text, err
}

func (s *stubExtractor) ExtractWithMarkup(_ context.Context, url string) (core.PageData, string, string, error) {
	s.calls++
	if s.fail {
		return core.PageData{}, "", "", fmt.Errorf("unreachable")
	}
	text := extract.Flatten(testutil.SampleHTML)
	return extract.ParsePage(url, testutil.SampleHTML, text), text, testutil.SampleHTML, nil
}

func newTestKit(m model.Model) (*ChatKit, *stubExtractor) {
	ex := &stubExtractor{}
	kit := New(func(o *Options) {
		o.Extractor = ex
		if m != nil {
			o.Model = m
		}
	})
	return kit, ex
}

func TestExtract_CacheFirst(t *testing.T) {
	ctx := context.Background()
	kit, ex := newTestKit(nil)

	data, cached, err := kit.Extract(ctx, "https://example.com/curso")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "Curso Completo de Marketing Digital", data.Title)

	_, cached, err = kit.Extract(ctx, "https://example.com/curso")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, ex.calls, "second extract must be served from cache")
}

func TestExtract_Errors(t *testing.T) {
	ctx := context.Background()
	kit, ex := newTestKit(nil)
	ex.fail = true

	_, _, err := kit.Extract(ctx, "https://example.com/curso")
	require.Error(t, err)

	_, _, err = kit.Extract(ctx, "")
	require.Error(t, err)
}

func TestAsk_GroundedAnswer(t *testing.T) {
	ctx := context.Background()
	m := model.NewMockModel()
	m.AddResponse("qual o preço?", "O curso custa R$ 497,00 com garantia de 7 dias")
	kit, _ := newTestKit(m)

	reply, sessionID, err := kit.Ask(ctx, "", "https://example.com/curso", "qual o preço?")
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.Equal(t, respond.OriginModel, reply.Origin)
	assert.Contains(t, reply.Text, "R$ 497,00")

	// The exchange lands in the session history.
	h := kit.Conversations().History(ctx, sessionID)
	require.Len(t, h, 2)
	assert.Equal(t, core.RoleUser, h[0].Role)
	assert.Equal(t, core.RoleAssistant, h[1].Role)
}

func TestAsk_FabricationIsBlocked(t *testing.T) {
	ctx := context.Background()
	m := model.NewMockModel()
	m.AddResponse("qual o preço?", "Só hoje por R$ 99,00!")
	kit, _ := newTestKit(m)

	reply, _, err := kit.Ask(ctx, "", "https://example.com/curso", "qual o preço?")
	require.NoError(t, err)
	assert.NotEqual(t, respond.OriginModel, reply.Origin)
	assert.NotContains(t, reply.Text, "99")
}

func TestAsk_SessionContinuity(t *testing.T) {
	ctx := context.Background()
	kit, _ := newTestKit(model.NewMockModel())

	_, sessionID, err := kit.Ask(ctx, "", "https://example.com/curso", "olá")
	require.NoError(t, err)
	_, sameID, err := kit.Ask(ctx, sessionID, "https://example.com/curso", "tem garantia?")
	require.NoError(t, err)
	assert.Equal(t, sessionID, sameID)
	assert.Len(t, kit.Conversations().History(ctx, sessionID), 4)
}

func TestStatsAndClear(t *testing.T) {
	ctx := context.Background()
	kit, _ := newTestKit(model.NewMockModel())

	_, sessionID, err := kit.Ask(ctx, "", "https://example.com/curso", "olá")
	require.NoError(t, err)

	st := kit.Stats(ctx)
	assert.Equal(t, 1, st.Documents)
	assert.Equal(t, 1, st.ActiveSessions)
	assert.Equal(t, 1, st.Cache.ValidEntries)
	assert.Equal(t, "mock", st.Model.Provider)

	assert.True(t, kit.ClearSession(ctx, sessionID))
	assert.Equal(t, 0, len(kit.Conversations().History(ctx, sessionID)))
}

func TestInvalidatePage(t *testing.T) {
	ctx := context.Background()
	kit, ex := newTestKit(nil)

	_, _, err := kit.Extract(ctx, "https://example.com/curso")
	require.NoError(t, err)
	assert.True(t, kit.InvalidatePage(ctx, "https://example.com/curso"))

	_, cached, err := kit.Extract(ctx, "https://example.com/curso")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, ex.calls)
}

func TestNewSessionID_Unique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
}
