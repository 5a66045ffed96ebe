package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultFile = "miriel.yaml"

type Config struct {
	Backend           Backend `yaml:"backend,omitempty"`
	ModelsDir         string  `yaml:"models_dir"`
	ScenesDir         string  `yaml:"scenes_dir"`
	ShadersDir        string  `yaml:"shaders_dir"`
	LogsDir           string  `yaml:"logs_dir"`
	LogLevel          string  `yaml:"log_level"`
	HttpAddr          string  `yaml:"http_addr"`
	WatchScenes       bool    `yaml:"watch_scenes"`
	SkipBrokenObjects bool    `yaml:"skip_broken_objects"`
	LogQueueSize      int     `yaml:"log_queue_size"`
	FrameRate         int     `yaml:"frame_rate"`
	ViewportWidth     int     `yaml:"viewport_width"`
	ViewportHeight    int     `yaml:"viewport_height"`
}

func Default() *Config {
	return &Config{
		ModelsDir:         "assets/models",
		ScenesDir:         "assets/scenes",
		ShadersDir:        "assets/shaders",
		LogsDir:           "Logs",
		LogLevel:          "info",
		HttpAddr:          ":8000",
		SkipBrokenObjects: true,
		LogQueueSize:      256,
		FrameRate:         60,
		ViewportWidth:     1280,
		ViewportHeight:    720,
	}
}

// Parse overlays data on the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse config")
	}
	if cfg.LogQueueSize <= 0 {
		return nil, errors.Errorf("log_queue_size must be positive, got %d", cfg.LogQueueSize)
	}
	if cfg.FrameRate <= 0 {
		return nil, errors.Errorf("frame_rate must be positive, got %d", cfg.FrameRate)
	}
	return cfg, nil
}

// Load reads path. A missing DefaultFile yields the defaults, any other
// missing file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultFile {
			return Default(), nil
		}
		return nil, errors.Wrapf(err, "Failed to read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

// SelectBackend applies the backend chosen on the command line. A config
// file naming a different backend is an error rather than being ignored.
func (cfg *Config) SelectBackend(b Backend) error {
	if cfg.Backend != BackendUnknown && cfg.Backend != b {
		return errors.Errorf("config asks for backend %s but %s was selected", cfg.Backend, b)
	}
	cfg.Backend = b
	return nil
}

func (cfg *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}
