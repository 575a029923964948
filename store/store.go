package store

import (
	"errors"
	"io/fs"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

// Keys used by the API for user preferences surviving across sessions
const (
	KeyTheme = "theme"
	KeyToken = "github_token"
)

// Store is the persistent key-value collaborator the core depends on.
// It is injected at initialization, read once at startup and written on
// every change, never used as ambient global state.
type Store interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// FileStore keeps preferences in memory and mirrors them to a single file
// so they survive restarts
type FileStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
	path  string
}

// NewFileStore opens the store backed by the given file.
// A missing file is not an error, it simply means a first run.
// An empty path gives a purely in-memory store.
func NewFileStore(path string) (*FileStore, error) {
	cache := gocache.New(gocache.NoExpiration, 0)

	if path != "" {
		if err := cache.LoadFile(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.WithError(err).WithField("path", path).Warn("unable to load preferences file. starting empty")
			}
		}
	}

	return &FileStore{cache: cache, path: path}, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, found := s.cache.Get(key)
	if !found {
		return "", false
	}

	value, ok := raw.(string)
	return value, ok
}

func (s *FileStore) Set(key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Set(key, value, gocache.NoExpiration)

	if s.path == "" {
		return nil
	}

	return s.cache.SaveFile(s.path)
}
