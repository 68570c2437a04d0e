package publisher

import (
	"context"
	"errors"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStoreConfig configures the YAML-backed configuration store.
type FileStoreConfig struct {
	Path string `env:"PUBLISHER_CONFIG_PATH" envDefault:"publisher.yaml"`
}

// FileStore loads the publisher configuration from a YAML file. The file is
// parsed once on first use and cached; publisher setup changes require a
// restart, matching how the rest of the deployment configuration behaves.
type FileStore struct {
	path string

	once   sync.Once
	config *Configuration
	err    error
}

// NewFileStore creates a YAML file store.
func NewFileStore(cfg FileStoreConfig) *FileStore {
	return &FileStore{path: cfg.Path}
}

func (s *FileStore) GetConfiguration(ctx context.Context) (*Configuration, error) {
	s.once.Do(func() {
		raw, err := os.ReadFile(s.path)
		if err != nil {
			if os.IsNotExist(err) {
				s.err = ErrNotConfigured
				return
			}
			s.err = errors.Join(ErrFailedToLoadConfiguration, err)
			return
		}

		var config Configuration
		if err := yaml.Unmarshal(raw, &config); err != nil {
			s.err = errors.Join(ErrFailedToLoadConfiguration, err)
			return
		}
		if !config.Complete() {
			s.err = ErrNotConfigured
			return
		}
		s.config = &config
	})

	if s.err != nil {
		return nil, s.err
	}
	cp := *s.config
	return &cp, nil
}

// StaticStore serves a fixed configuration, used in tests and simulation
// deployments.
type StaticStore struct {
	config *Configuration
}

// NewStaticStore creates a store returning the given configuration. A nil
// or incomplete configuration yields ErrNotConfigured on every call.
func NewStaticStore(config *Configuration) *StaticStore {
	return &StaticStore{config: config}
}

func (s *StaticStore) GetConfiguration(ctx context.Context) (*Configuration, error) {
	if !s.config.Complete() {
		return nil, ErrNotConfigured
	}
	cp := *s.config
	return &cp, nil
}
