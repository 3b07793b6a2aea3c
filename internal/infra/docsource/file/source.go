package file

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yanqian/faq-relay/internal/domain/faq"
	apperrors "github.com/yanqian/faq-relay/pkg/errors"
)

// Source reads the FAQ document from a local path. Meant for development and tests.
type Source struct {
	path   string
	logger *slog.Logger
}

// NewSource constructs the file source.
func NewSource(path string, logger *slog.Logger) *Source {
	return &Source{path: path, logger: logger.With("component", "docsource.file")}
}

// Load implements faq.DocumentSource. A missing file is reported as not found.
func (s *Source) Load(ctx context.Context) (faq.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return faq.Document{}, false, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("faq file not found", "path", s.path)
			return faq.Document{}, false, nil
		}
		return faq.Document{}, false, apperrors.Wrap(apperrors.CodeSource, "read faq file", err)
	}
	abs, err := filepath.Abs(s.path)
	if err != nil {
		abs = s.path
	}
	return faq.Document{
		Name:     filepath.Base(s.path),
		SourceID: "file://" + abs,
		Content:  string(data),
	}, true, nil
}

var _ faq.DocumentSource = (*Source)(nil)
