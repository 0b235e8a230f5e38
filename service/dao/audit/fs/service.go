package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/toolgate/toolgate/service/audit"
	"github.com/toolgate/toolgate/service/dao"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
)

// Service implements filesystem-backed append-only audit storage. Entries
// are immutable: saving over an existing id fails with dao.ErrImmutable and
// Delete is not supported.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.Mutex
}

var _ dao.Service[string, audit.Entry] = (*Service)(nil)

// Save appends a new entry; overwriting an existing one is refused.
func (s *Service) Save(ctx context.Context, entry *audit.Entry) error {
	if entry == nil {
		return dao.ErrNilEntity
	}
	if entry.ID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.entryPath(entry.ID)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check audit entry %s: %w", entry.ID, err)
	}
	if exists {
		return dao.ErrImmutable
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	if err := s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save audit entry to %s: %w", filePath, err)
	}
	return nil
}

// Load retrieves an entry by id.
func (s *Service) Load(ctx context.Context, id string) (*audit.Entry, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.entryPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check audit entry %s: %w", id, err)
	}
	if !exists {
		return nil, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit entry %s: %w", id, err)
	}
	var entry audit.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit entry %s: %w", id, err)
	}
	return &entry, nil
}

// Delete is refused: the audit trail is append-only.
func (s *Service) Delete(ctx context.Context, id string) error {
	return dao.ErrImmutable
}

// List returns all stored entries.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*audit.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	var entries []*audit.Entry
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			continue
		}
		var entry audit.Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

func (s *Service) entryPath(id string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// New creates a filesystem audit store rooted at basePath.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fsService := afs.New()
	ctx := context.Background()
	exists, _ := fsService.Exists(ctx, basePath)
	if !exists {
		if err := fsService.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	basePath = url.Normalize(basePath, file.Scheme)
	return &Service{basePath: basePath, fs: fsService}, nil
}
