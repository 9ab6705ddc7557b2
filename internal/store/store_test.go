package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	require.NoError(t, s.PutBook(ctx, Book{ID: "b1", Title: "Dune", Date: "1965", URL: "https://example.com/dune"}))
	require.NoError(t, s.PutAuthor(ctx, Author{ID: "a1", PenName: "Frank Herbert"}))

	rec, err := s.Resolve(ctx, TypeBook, "b1")
	require.NoError(t, err)
	assert.Equal(t, Record{Type: TypeBook, ID: "b1", Name: "Dune", Date: "1965", URL: "https://example.com/dune"}, rec)

	rec, err = s.Resolve(ctx, TypeAuthor, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", rec.Name)

	_, err = s.Resolve(ctx, TypeBook, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = s.Resolve(ctx, "Para", "b1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPutReplaces(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	require.NoError(t, s.PutBook(ctx, Book{ID: "b1", Title: "Draft"}))
	require.NoError(t, s.PutBook(ctx, Book{ID: "b1", Title: "Final"}))

	rec, err := s.Resolve(ctx, TypeBook, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Final", rec.Name)
	books, _, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, books)
}

func TestGather(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, BooksFile), []byte(`
- id: b1
  title: Dune
  date: "1965"
- id: b2
  title: Children of Dune
`), 0o600))

	s := openMemory(t)
	n, err := Gather(ctx, s, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "missing authors file is skipped")

	rec, err := s.Resolve(ctx, TypeBook, "b2")
	require.NoError(t, err)
	assert.Equal(t, "Children of Dune", rec.Name)
}

func TestGatherRejectsBadData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, AuthorsFile), []byte("- pen_name: Nobody\n"), 0o600))
	_, err := Gather(context.Background(), openMemory(t), dir, nil)
	assert.True(t, errors.Is(err, ErrGatherFailed))

	require.NoError(t, os.WriteFile(filepath.Join(dir, AuthorsFile), []byte("{not a list"), 0o600))
	_, err = Gather(context.Background(), openMemory(t), dir, nil)
	assert.True(t, errors.Is(err, ErrGatherFailed))
}
