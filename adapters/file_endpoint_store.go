package adapters

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"lightctl/application"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const endpointKey = "endpoint"

type FileEndpointStoreParams struct {
	// Path of the config file. Empty means the per-user default location.
	Path string

	Log zerolog.Logger
}

// FileEndpointStore persists the control service base URL in a small YAML
// file under the user config dir. Reads fall back to the hard-coded
// default until an explicit Set has happened; a Set survives restarts.
type FileEndpointStore struct {
	mu   sync.Mutex
	path string
	v    *viper.Viper

	log zerolog.Logger
}

func NewFileEndpointStore(params FileEndpointStoreParams) (*FileEndpointStore, error) {
	path := params.Path
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "lightctl", "config.yaml")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault(endpointKey, application.DefaultEndpoint)

	if err := v.ReadInConfig(); err != nil {
		// First run has no file yet; anything else is a real problem.
		var notFound viper.ConfigFileNotFoundError
		if !os.IsNotExist(err) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return &FileEndpointStore{path: path, v: v, log: params.Log}, nil
}

func (s *FileEndpointStore) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(endpointKey)
}

func (s *FileEndpointStore) Set(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.v.Set(endpointKey, url)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return err
	}

	s.log.Info().Str("endpoint", url).Str("path", s.path).Msg("endpoint saved")
	return nil
}

var _ application.EndpointStore = &FileEndpointStore{}
