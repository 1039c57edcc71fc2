package catalogsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/yanqian/surf-report/internal/domain/catalog"
)

// FileSource reads the catalog from a local JSON file.
type FileSource struct {
	path string
}

// NewFileSource constructs the source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load implements catalog.Source.
func (s *FileSource) Load(_ context.Context) ([]catalog.Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	return decodeEntries(f)
}

func decodeEntries(r io.Reader) ([]catalog.Entry, error) {
	var entries []catalog.Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return entries, nil
}

var _ catalog.Source = (*FileSource)(nil)
