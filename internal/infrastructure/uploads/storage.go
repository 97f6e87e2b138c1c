package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"abby-server/internal/infrastructure/logger"
)

// Placeholder content for file types without a text extractor.
const (
	pdfNotImplemented  = "PDF file content extraction not implemented yet."
	wordNotImplemented = "Word document content extraction not implemented yet."
	unsupportedType    = "Unsupported file type for content extraction."
)

// Storage persists uploaded files on local disk. Saved names are prefixed
// with the upload timestamp so repeated uploads of the same file never
// collide.
type Storage struct {
	dir string
	now func() time.Time
}

// NewStorage creates a storage rooted at dir. The directory is created on
// first save, not up front.
func NewStorage(dir string) *Storage {
	return &Storage{dir: dir, now: time.Now}
}

// Save writes the upload to disk and returns the stored path. The original
// name is reduced to its base to keep uploads inside the storage directory.
func (s *Storage) Save(originalName string, content io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	name := fmt.Sprintf("%d_%s", s.now().UnixMilli(), filepath.Base(originalName))
	path := filepath.Join(s.dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, content); err != nil {
		return "", fmt.Errorf("writing upload file: %w", err)
	}

	log := logger.GetLogger()
	log.Info().Str("path", path).Msg("stored uploaded file")
	return path, nil
}

// ReadContent extracts text from a stored file. Types without an extractor
// yield a placeholder string rather than an error so the model still gets a
// message describing the upload.
func (s *Storage) ReadContent(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".csv", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading upload file: %w", err)
		}
		return string(data), nil
	case ".pdf":
		return pdfNotImplemented, nil
	case ".doc", ".docx":
		return wordNotImplemented, nil
	default:
		return unsupportedType, nil
	}
}
