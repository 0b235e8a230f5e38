package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/toolgate/toolgate/model/action"
	"github.com/toolgate/toolgate/service/dao"
	"github.com/toolgate/toolgate/service/dao/criteria"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
)

// Service implements filesystem-backed pending-action storage. One JSON file
// per action; Mutate serialises read-modify-write cycles under the service
// lock so the pending-status guard cannot race within this process. A
// multi-replica deployment should substitute a store with first-class
// conditional updates.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.Mutex
}

var _ dao.Conditional[string, action.Pending] = (*Service)(nil)

// Save persists an action.
func (s *Service) Save(ctx context.Context, pending *action.Pending) error {
	if pending == nil {
		return dao.ErrNilEntity
	}
	if pending.ID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upload(ctx, pending)
}

// Load retrieves an action by id.
func (s *Service) Load(ctx context.Context, id string) (*action.Pending, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.download(ctx, id)
}

// Delete removes an action.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	filePath := s.actionPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check action %s: %w", id, err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	return s.fs.Delete(ctx, filePath)
}

// List returns stored actions, optionally filtered by Status/UserID
// parameters.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*action.Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	var actions []*action.Pending
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			continue
		}
		var pending action.Pending
		if err := json.Unmarshal(data, &pending); err != nil {
			continue
		}
		if !criteria.FilterByStatus(string(pending.Status), parameters) {
			continue
		}
		if !criteria.FilterByUser(pending.UserID, parameters) {
			continue
		}
		actions = append(actions, &pending)
	}
	return actions, nil
}

// Mutate loads the action, applies fn and persists it when fn returns true,
// all under the service lock.
func (s *Service) Mutate(ctx context.Context, id string, fn dao.Mutator[action.Pending]) (bool, error) {
	if id == "" {
		return false, dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.download(ctx, id)
	if err != nil {
		return false, err
	}
	if pending == nil {
		return false, dao.ErrNotFound
	}
	if !fn(pending) {
		return false, nil
	}
	if err := s.upload(ctx, pending); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) upload(ctx context.Context, pending *action.Pending) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}
	filePath := s.actionPath(pending.ID)
	if err := s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save action to %s: %w", filePath, err)
	}
	return nil
}

func (s *Service) download(ctx context.Context, id string) (*action.Pending, error) {
	filePath := s.actionPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check action %s: %w", id, err)
	}
	if !exists {
		return nil, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read action %s: %w", id, err)
	}
	var pending action.Pending
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action %s: %w", id, err)
	}
	return &pending, nil
}

func (s *Service) actionPath(id string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// New creates a filesystem action store rooted at basePath.
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
