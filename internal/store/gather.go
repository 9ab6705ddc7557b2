package store

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/astdoc/internal/logfields"
)

// Data file names inside the data directory.
const (
	BooksFile   = "books.yaml"
	AuthorsFile = "authors.yaml"
)

// Gather loads books.yaml and authors.yaml from dataDir into s. Missing files
// are skipped. It returns the number of records stored.
func Gather(ctx context.Context, s *SQLiteStore, dataDir string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var books []Book
	found, err := readYAML(filepath.Join(dataDir, BooksFile), &books)
	if err != nil {
		return 0, err
	}
	if !found {
		logger.Info("No books data file, skipping", logfields.Path(filepath.Join(dataDir, BooksFile)))
	}
	var authors []Author
	found, err = readYAML(filepath.Join(dataDir, AuthorsFile), &authors)
	if err != nil {
		return 0, err
	}
	if !found {
		logger.Info("No authors data file, skipping", logfields.Path(filepath.Join(dataDir, AuthorsFile)))
	}

	n := 0
	for _, b := range books {
		if b.ID == "" {
			return n, ErrGatherFailed.WithContext("path", BooksFile).WithContext("reason", "book without id")
		}
		if err := s.PutBook(ctx, b); err != nil {
			return n, err
		}
		n++
	}
	for _, a := range authors {
		if a.ID == "" {
			return n, ErrGatherFailed.WithContext("path", AuthorsFile).WithContext("reason", "author without id")
		}
		if err := s.PutAuthor(ctx, a); err != nil {
			return n, err
		}
		n++
	}
	logger.Debug("Gathered records", "books", len(books), "authors", len(authors))
	return n, nil
}

func readYAML(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, ErrGatherFailed.WithCause(err).WithContext("path", path)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, ErrGatherFailed.WithCause(err).WithContext("path", path)
	}
	return true, nil
}
