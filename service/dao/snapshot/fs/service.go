package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/procman/service/dao"
	"github.com/viant/procman/service/dao/snapshot"
)

const extension = ".json"

// Service stores snapshots as JSON documents under baseURL. Any afs backed
// location works (file://, mem://, cloud storage with the matching afs module).
type Service struct {
	baseURL string
	fs      afs.Service
	logger  *slog.Logger
	mu      sync.RWMutex
}

// Ensure Service implements dao.Service
var _ dao.Service[string, snapshot.Snapshot] = (*Service)(nil)

// Save persists a snapshot
func (s *Service) Save(ctx context.Context, aSnapshot *snapshot.Snapshot) error {
	if aSnapshot == nil {
		return dao.ErrNilEntity
	}
	if aSnapshot.ID == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(aSnapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", aSnapshot.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	location := s.location(aSnapshot.ID)
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save snapshot to %s: %w", location, err)
	}
	return nil
}

// Load retrieves a snapshot by id
func (s *Service) Load(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	location := s.location(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check snapshot %s: %w", location, err)
	}
	if !exists {
		return nil, fmt.Errorf("snapshot %s: %w", id, dao.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", location, err)
	}
	return decode(data, location)
}

// Delete removes a snapshot
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	location := s.location(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check snapshot %s: %w", location, err)
	}
	if !exists {
		return fmt.Errorf("snapshot %s: %w", id, dao.ErrNotFound)
	}
	if err = s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", location, err)
	}
	return nil
}

// List returns stored snapshots, oldest first; unreadable documents are skipped
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*snapshot.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots in %s: %w", s.baseURL, err)
	}
	var result []*snapshot.Snapshot
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), extension) {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.Warn("failed to read snapshot", "url", object.URL(), "error", err)
			continue
		}
		aSnapshot, err := decode(data, object.URL())
		if err != nil {
			s.logger.Warn("skipping snapshot", "url", object.URL(), "error", err)
			continue
		}
		if !snapshot.Match(aSnapshot, parameters) {
			continue
		}
		result = append(result, aSnapshot)
	}
	sort.Slice(result, func(i, j int) bool { return snapshot.Older(result[i], result[j]) })
	return result, nil
}

// BaseURL returns the storage location
func (s *Service) BaseURL() string {
	return s.baseURL
}

func (s *Service) location(id string) string {
	return url.Join(s.baseURL, id+extension)
}

func decode(data []byte, location string) (*snapshot.Snapshot, error) {
	ret := &snapshot.Snapshot{}
	if err := json.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dao.ErrCorrupted, location, err)
	}
	return ret, nil
}

// New creates a snapshot store rooted at baseURL, creating it when missing
func New(ctx context.Context, fs afs.Service, baseURL string, logger *slog.Logger) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("snapshot base URL cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	baseURL = url.Normalize(baseURL, file.Scheme)
	exists, err := fs.Exists(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", baseURL, err)
	}
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory %s: %w", baseURL, err)
		}
	}
	return &Service{baseURL: baseURL, fs: fs, logger: logger}, nil
}
