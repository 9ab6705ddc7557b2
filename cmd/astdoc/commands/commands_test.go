package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/astdoc/internal/foundation/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Name("astdoc"), kong.Vars{"version": "test"}, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	err = kctx.Run(&Global{Stdout: &out}, cli)
	return out.String(), err
}

func writeDoc(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
node_type: Document
title: notes
children:
  - node_type: Head
    children:
      - Intro
      - node_type: Para
        children:
          - transform: env_var
            body: ASTDOC_CLI_NAME
`), 0o600))
	return path
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ASTDOC_CLI_NAME", "world")
	doc := writeDoc(t, dir)

	out, err := run(t, "render", "-r", "text", doc)
	require.NoError(t, err)
	assert.Equal(t, "Notes\n#####\n\nIntro\n=====\n\nworld\n", out)

	target := filepath.Join(dir, "out.html")
	out, err = run(t, "render", "-o", target, "--dump-ast", filepath.Join(dir, "tree.yaml"), doc)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.FileExists(t, target)
	assert.FileExists(t, filepath.Join(dir, "tree.yaml"))
}

func TestRenderCommandFailures(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	doc := writeDoc(t, dir)

	_, err := run(t, "render", doc)
	require.Error(t, err)
	assert.Equal(t, 11, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err), "missing variable")

	t.Setenv("ASTDOC_CLI_NAME", "world")
	_, err = run(t, "render", "-r", "pdf", doc)
	require.Error(t, err)
	assert.Equal(t, 2, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err), "unknown renderer")
}

func TestDumpCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ASTDOC_CLI_NAME", "world")
	doc := writeDoc(t, dir)

	out, err := run(t, "dump", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "heading_level: 1")
	assert.Contains(t, out, "- world\n")
	assert.NotContains(t, out, "env_var")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "astdoc.yaml")

	out, err := run(t, "-c", cfg, "init")
	require.NoError(t, err)
	assert.Contains(t, out, cfg)
	assert.FileExists(t, cfg)

	_, err = run(t, "-c", cfg, "init")
	assert.Equal(t, 7, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))

	_, err = run(t, "-c", cfg, "init", "--force")
	assert.NoError(t, err)
}
