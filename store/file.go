package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeu5/leanrl/util"
)

const (
	fileIndex  = "versions.jsonl"
	fileActive = "ACTIVE"
)

// FileStore keeps one directory per name holding a blob file per version,
// a jsonl index of the versions and the id of the active version.
type FileStore struct {
	root string
	mu   sync.Mutex
}

var _ Store = &FileStore{}

func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) dir(name string) string {
	return filepath.Join(s.root, name)
}

func (s *FileStore) Put(ctx context.Context, name string, blob []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.dir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	v := Version{
		ID:        uuid.New().String(),
		Hash:      hashOf(blob),
		Size:      len(blob),
		CreatedAt: time.Now().UTC(),
	}
	if err := os.WriteFile(filepath.Join(dir, v.ID+".bin"), blob, 0644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	line, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal version: %w", err)
	}
	if err := util.AppendToFile(filepath.Join(dir, fileIndex), string(line)); err != nil {
		return "", fmt.Errorf("append index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileActive), []byte(v.ID), 0644); err != nil {
		return "", fmt.Errorf("set active: %w", err)
	}
	return v.ID, nil
}

func (s *FileStore) active(name string) (string, error) {
	bs, err := os.ReadFile(filepath.Join(s.dir(name), fileActive))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("weights %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get active: %w", err)
	}
	return strings.TrimSpace(string(bs)), nil
}

func (s *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, err := s.active(name)
	if err != nil {
		return nil, err
	}
	return s.read(name, id)
}

func (s *FileStore) read(name, version string) ([]byte, error) {
	if err := validateName(version); err != nil {
		return nil, err
	}
	bs, err := os.ReadFile(filepath.Join(s.dir(name), version+".bin"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("weights %s version %s: %w", name, version, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return bs, nil
}

func (s *FileStore) GetVersion(ctx context.Context, name, version string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(name, version)
}

func (s *FileStore) Versions(ctx context.Context, name string) ([]Version, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(filepath.Join(s.dir(name), fileIndex))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("weights %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	active, _ := s.active(name)
	versions := make([]Version, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if len(strings.TrimSpace(scanner.Text())) == 0 {
			continue
		}
		var v Version
		if err := json.Unmarshal(scanner.Bytes(), &v); err != nil {
			return nil, fmt.Errorf("parse index: %w", err)
		}
		v.Active = v.ID == active
		versions = append(versions, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return versions, nil
}

func (s *FileStore) Activate(ctx context.Context, name, version string) error {
	if err := validateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.read(name, version); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir(name), fileActive), []byte(version), 0644); err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
