package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultServerURL = "http://localhost:8000"
	ConfigDirName    = ".blinked"
	ConfigFileName   = "config.yaml"
)

// Config is the root client configuration.
type Config struct {
	ServerURL   string        `yaml:"server_url"   env:"BLINKED_SERVER_URL"   env-default:"http://localhost:8000"`
	DataDir     string        `yaml:"data_dir"     env:"BLINKED_DATA_DIR"`
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"BLINKED_HTTP_TIMEOUT" env-default:"15s"`

	Storage StorageConfig `yaml:"storage"`
	Chat    ChatConfig    `yaml:"chat"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects where the credential pair is persisted.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"BLINKED_STORAGE_BACKEND" env-default:"bolt"`
}

// ChatConfig holds chat surface settings.
type ChatConfig struct {
	AnonymousPromptLimit int      `yaml:"anonymous_prompt_limit" env:"BLINKED_ANON_PROMPT_LIMIT" env-default:"3"`
	DemoVideoURL         string   `yaml:"demo_video_url"         env:"BLINKED_DEMO_VIDEO_URL"    env-default:"https://sample-videos.com/video123/mp4/720/big_buck_bunny_720p_1mb.mp4"`
	DemoLinks            []string `yaml:"demo_links"             env:"BLINKED_DEMO_LINKS"        env-default:"https://en.wikipedia.org/wiki/Photosynthesis,https://www.khanacademy.org/science/biology" env-separator:","`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"BLINKED_LOG_LEVEL"  env-default:"warn"`
	Format string `yaml:"format" env:"BLINKED_LOG_FORMAT" env-default:"text"`
}

// Dir returns the default per-user directory for config and credentials.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ConfigDirName)
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(Dir(), ConfigFileName)
}

// EnsureDataDir creates the data directory with owner-only permissions.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0700)
}
