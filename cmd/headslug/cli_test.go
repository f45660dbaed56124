package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/headslug/internal/toc"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := CLI{out: &out}
	k, err := kong.New(&cli, kong.Name("headslug"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := k.Parse(args)
	if err != nil {
		return "", err
	}
	err = ctx.Run(&cli)
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const guide = "# Guide\n\n## Install `go`\n\n## Install `go`\n\n### Linux\n"

func TestSlugCommand(t *testing.T) {
	out, err := runCLI(t, "slug", "Seção 1", "Intro", "Intro", "¡!")
	require.NoError(t, err)
	assert.Equal(t, "secao-1\nintro\nintro-1\nsection\n", out)
}

func TestRenderCommand_Stdout(t *testing.T) {
	path := writeFile(t, "guide.md", guide)
	out, err := runCLI(t, "render", path)
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="guide">Guide</h1>`)
	assert.Contains(t, out, `<h2 id="install-go">`)
	assert.Contains(t, out, `<h2 id="install-go-1">`)
	assert.Contains(t, out, `<h3 id="linux">Linux</h3>`)
}

func TestRenderCommand_OutputFile(t *testing.T) {
	path := writeFile(t, "page.html", "<html><body><h1>Hello World</h1></body></html>")
	dest := filepath.Join(t.TempDir(), "out.html")

	out, err := runCLI(t, "render", path, "-o", dest)
	require.NoError(t, err)
	assert.Empty(t, out)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(got), `<h1 id="hello-world">Hello World</h1>`)
}

func TestRenderCommand_MissingFile(t *testing.T) {
	_, err := runCLI(t, "render", filepath.Join(t.TempDir(), "nope.md"))
	require.Error(t, err)
}

func TestOutlineCommand_Text(t *testing.T) {
	path := writeFile(t, "guide.md", guide)
	out, err := runCLI(t, "outline", path)
	require.NoError(t, err)
	assert.Equal(t,
		"- Guide (#guide)\n"+
			"  - Install go (#install-go)\n"+
			"  - Install go (#install-go-1)\n"+
			"    - Linux (#linux)\n",
		out)
}

func TestOutlineCommand_JSON(t *testing.T) {
	path := writeFile(t, "guide.md", guide)
	out, err := runCLI(t, "outline", "--json", path)
	require.NoError(t, err)

	var items []*toc.Item
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "guide", items[0].Slug)
	require.Len(t, items[0].Children, 2)
	assert.Equal(t, []string{"guide", "install-go-1"}, items[0].Children[1].Children[0].Breadcrumb)
}

func TestOutlineCommand_Unsupported(t *testing.T) {
	path := writeFile(t, "notes.txt", "hello")
	_, err := runCLI(t, "outline", path)
	require.Error(t, err)
}

func TestWatchFile(t *testing.T) {
	path := writeFile(t, "doc.md", "# One\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, func() { calls.Add(1) })
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("# Two\n"), 0o600)
		return calls.Load() > 0
	}, 5*time.Second, 300*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
