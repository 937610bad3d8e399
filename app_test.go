package main

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markan/pkg/config"
	"markan/pkg/paths"
	"markan/pkg/services"
)

func p(t *testing.T, slash string) string {
	t.Helper()
	n := paths.Normalize(filepath.FromSlash(slash))
	require.NotEmpty(t, n)
	return n
}

type recordedEvent struct {
	name string
	data []interface{}
}

func newTestApp(t *testing.T) (*App, afero.Fs, *[]recordedEvent) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(p(t, "/ws"), 0o755))
	require.NoError(t, afero.WriteFile(fs, p(t, "/ws/a.md"), []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fs, p(t, "/outside/doc.md"), []byte("doc"), 0o644))

	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	cfg.AppDataDir = p(t, "/appdata")

	app := NewApp(nil)
	core, err := services.NewCore(cfg, fs, nil, nil)
	require.NoError(t, err)
	app.attach(core)

	var mu sync.Mutex
	events := &[]recordedEvent{}
	app.emit = func(event string, data ...interface{}) {
		mu.Lock()
		*events = append(*events, recordedEvent{name: event, data: data})
		mu.Unlock()
	}
	return app, fs, events
}

func TestBoundFileMethods(t *testing.T) {
	app, fs, _ := newTestApp(t)

	assert.Nil(t, app.ReadFile(p(t, "/ws/a.md")))
	assert.Empty(t, app.ReadFolder(p(t, "/ws")))

	require.True(t, app.SetWorkspacePath(p(t, "/ws")))

	content := app.ReadFile(p(t, "/ws/a.md"))
	require.NotNil(t, content)
	assert.Equal(t, "a", *content)

	assert.True(t, app.WriteFile(p(t, "/ws/b.md"), "b"))
	assert.True(t, app.Exists(p(t, "/ws/b.md")))
	assert.Len(t, app.ReadFolder(p(t, "/ws")), 2)
	assert.True(t, app.DeleteFile(p(t, "/ws/b.md")))

	assert.False(t, app.WriteFile(p(t, "/outside/x.md"), "x"))
	exists, _ := afero.Exists(fs, p(t, "/outside/x.md"))
	assert.False(t, exists)

	assert.False(t, app.SetWorkspacePath(p(t, "/ws/a.md")))
	assert.Equal(t, p(t, "/ws"), app.core.Config.WorkspacePath)
	assert.Equal(t, p(t, "/appdata"), app.GetAppPath("userData"))
	assert.Equal(t, "", app.GetAppPath("nope"))
}

func TestOpenFileDeliveredAfterDomReady(t *testing.T) {
	app, _, events := newTestApp(t)

	app.onFileOpen(p(t, "/outside/doc.md"))
	assert.Empty(t, *events)

	app.domReady(context.Background())
	require.Len(t, *events, 1)
	assert.Equal(t, EventOpenFile, (*events)[0].name)
	assert.Equal(t, []interface{}{p(t, "/outside/doc.md")}, (*events)[0].data)

	content := app.ReadFile(p(t, "/outside/doc.md"))
	require.NotNil(t, content)
	assert.Equal(t, "doc", *content)
	assert.Nil(t, app.ReadFile(p(t, "/outside/other.md")))
}

func TestWorkspaceChangedEvent(t *testing.T) {
	app, _, events := newTestApp(t)

	app.workspaceChanged(p(t, "/ws"))
	require.Len(t, *events, 1)
	assert.Equal(t, EventWorkspaceChanged, (*events)[0].name)
}

func TestAutosaveBound(t *testing.T) {
	app, fs, _ := newTestApp(t)

	assert.False(t, app.Autosave("", "t", "c"))
	assert.True(t, app.Autosave("note-1", "Draft", "body"))
	assert.Equal(t, 1, app.core.Autosaver.Flush())

	data, err := afero.ReadFile(fs, p(t, "/appdata/autosave/Draft.md"))
	require.NoError(t, err)
	assert.Equal(t, "body", string(data))
}

func TestFileArgs(t *testing.T) {
	dir := p(t, "/home/user")
	got := fileArgs([]string{"-flag", "", "notes.md", p(t, "/abs/x.md")}, dir)
	assert.Equal(t, []string{filepath.Join(dir, "notes.md"), p(t, "/abs/x.md")}, got)
}
