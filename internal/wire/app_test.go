package wire

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/stackshelf/internal/config"
	"github.com/mithrel/stackshelf/pkg/api"
)

func TestBuildApp(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{DataDir: dir, DBPath: filepath.Join(dir, "nested", "stackshelf.db")}
	app, err := BuildApp(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, "stackshelf ", app.Log.Prefix())
	require.NoError(t, app.Store.Upsert(context.Background(), "ava", api.Essay{Title: "t", SourceURL: "https://ava.substack.com/p/t"}))
	seen, err := app.Store.Seen(context.Background(), "https://ava.substack.com/p/t")
	require.NoError(t, err)
	assert.True(t, seen)
}
