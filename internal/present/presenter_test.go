package present

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/stackshelf/pkg/api"
)

func many(n int) api.Essays {
	out := make(api.Essays, n)
	for i := range out {
		out[i] = api.Essay{Title: strings.Repeat("x", i+1), LikeCount: i, Date: "Jan 2, 2024", FileLink: "a.md", HTMLLink: "a.html"}
	}
	return out
}

func TestParseMode(t *testing.T) {
	for _, name := range ModeNames() {
		_, ok := ParseMode(name)
		assert.True(t, ok, name)
	}
	m, ok := ParseMode("pretty")
	assert.True(t, ok)
	assert.Equal(t, ModeMarkdown, m)
	_, ok = ParseMode("yaml")
	assert.False(t, ok)
}

func TestRenderEssaysPaged(t *testing.T) {
	es := many(7)
	for _, size := range []int{0, 1, 3, 100} {
		var buf bytes.Buffer
		require.NoError(t, RenderEssays(context.Background(), &buf, es, Options{Mode: ModeJSON, PageSize: size}))
		var got api.Essays
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, es, got, "page size %d", size)
	}
}

func TestRenderEssaysKeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	es := api.Essays{{Title: "b"}, {Title: "a"}}
	require.NoError(t, RenderEssays(context.Background(), &buf, es, Options{Mode: ModeNDJSON}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Contains(t, lines[0], `"b"`)
}

func TestRenderEssaysCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	err := RenderEssays(ctx, &buf, many(3), Options{Mode: ModePlain})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderEssaysXLSXNeedsPath(t *testing.T) {
	err := RenderEssays(context.Background(), &bytes.Buffer{}, many(1), Options{Mode: ModeXLSX})
	assert.Error(t, err)
}

func TestRenderEssayPlain(t *testing.T) {
	var buf bytes.Buffer
	e := api.Essay{Title: "Taste", LikeCount: 3, Date: "Jan 2, 2024", HTMLLink: "t.html"}
	require.NoError(t, RenderEssay(&buf, e, "", Options{Mode: ModeHTML, ShowRendered: true, LinkPrefix: "../"}))
	assert.Contains(t, buf.String(), `href="../t.html"`)

	assert.Error(t, RenderEssay(&buf, e, "", Options{Mode: ModeTUI}))
}
