package tempstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/skillsenselab/vaani/component"
	"github.com/skillsenselab/vaani/logger"
)

// Config controls where temp audio lands.
type Config struct {
	// Dir is the directory for temp files. Empty means os.TempDir()/vaani.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.Dir == "" {
		c.Dir = filepath.Join(os.TempDir(), "vaani")
	}
}

// Store writes uploads to disk and tracks them until release.
type Store struct {
	cfg Config
	log *logger.Logger

	mu   sync.Mutex
	live map[string]struct{}
}

// New creates a store. The directory is created on Start.
func New(cfg Config) *Store {
	cfg.ApplyDefaults()
	return &Store{
		cfg:  cfg,
		log:  logger.WithComponent("tempstore"),
		live: make(map[string]struct{}),
	}
}

// Save writes data to a uniquely named file and returns its path together
// with a release function. The release function is idempotent.
func (s *Store) Save(data []byte, ext string) (string, func(), error) {
	name := uuid.NewString()
	if ext != "" {
		name += "." + ext
	}
	path := filepath.Join(s.cfg.Dir, name)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", nil, fmt.Errorf("tempstore: write %s: %w", path, err)
	}

	s.mu.Lock()
	s.live[path] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() { s.remove(path) })
	}
	return path, release, nil
}

// Live returns the number of tracked files.
func (s *Store) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

func (s *Store) remove(path string) {
	s.mu.Lock()
	delete(s.live, path)
	s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("Failed to remove temp file", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}

// --- component.Component ---

// Name returns the component name.
func (s *Store) Name() string { return "tempstore" }

// Start creates the temp directory.
func (s *Store) Start(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.Dir, 0o700); err != nil {
		return fmt.Errorf("tempstore: create dir %s: %w", s.cfg.Dir, err)
	}
	return nil
}

// Stop sweeps any files still tracked.
func (s *Store) Stop(ctx context.Context) error {
	s.mu.Lock()
	leftover := make([]string, 0, len(s.live))
	for path := range s.live {
		leftover = append(leftover, path)
	}
	s.mu.Unlock()

	if len(leftover) > 0 {
		s.log.Info("Sweeping leftover temp files", map[string]interface{}{
			"count": len(leftover),
		})
	}
	for _, path := range leftover {
		s.remove(path)
	}
	return nil
}

// Health reports the number of live temp files.
func (s *Store) Health(ctx context.Context) component.Health {
	return component.Healthy(s.Name(), fmt.Sprintf("%d live files", s.Live()))
}
