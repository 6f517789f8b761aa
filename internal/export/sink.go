package export

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"
	"resumebuilder/internal/utils"
)

// Sink receives downloaded artifacts
type Sink interface {
	Save(ctx context.Context, name, contentType string, body []byte) (types.Artifact, error)
}

// FileSink writes artifacts into a directory
type FileSink struct {
	Dir string
}

// NewFileSink returns a sink rooted at dir
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

func (s *FileSink) Save(ctx context.Context, name, contentType string, body []byte) (types.Artifact, error) {
	clean, err := utils.SanitizeFileName(name)
	if err != nil {
		return types.Artifact{}, errors.NewIOError("INVALID_ARTIFACT_NAME", "Refusing to save artifact", err)
	}

	location := filepath.Join(s.Dir, clean)
	if err := utils.WriteFileAtomic(location, body); err != nil {
		return types.Artifact{}, errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", location), err)
	}

	return types.Artifact{
		Name:        clean,
		ContentType: contentType,
		Size:        int64(len(body)),
		Location:    location,
	}, nil
}

// MemorySink keeps artifacts in memory, keyed by name
type MemorySink struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemorySink returns an empty in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

func (s *MemorySink) Save(ctx context.Context, name, contentType string, body []byte) (types.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), body...)
	return types.Artifact{Name: name, ContentType: contentType, Size: int64(len(body))}, nil
}

// Get returns a saved artifact
func (s *MemorySink) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.files[name]
	return body, ok
}

// Len returns the number of saved artifacts
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
