package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverFile     = "file"
	DriverMemory   = "memory"

	BackupFS = "fs"
	BackupS3 = "s3"
)

type Config struct {
	DataDir string        `mapstructure:"data_dir" yaml:"data_dir"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Loans   LoansConfig   `mapstructure:"loans" yaml:"loans"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Backup  BackupConfig  `mapstructure:"backup" yaml:"backup"`
	Plugins PluginsConfig `mapstructure:"plugins" yaml:"plugins"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
}

type LoansConfig struct {
	DefaultDueDays int `mapstructure:"default_due_days" yaml:"default_due_days"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

type BackupConfig struct {
	Driver string   `mapstructure:"driver" yaml:"driver"`
	Dir    string   `mapstructure:"dir" yaml:"dir"`
	S3     S3Config `mapstructure:"s3" yaml:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Region    string `mapstructure:"region" yaml:"region"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix"`
	PathStyle bool   `mapstructure:"path_style" yaml:"path_style"`
}

type PluginsConfig struct {
	Manifest string `mapstructure:"manifest" yaml:"manifest"`
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"data":           "data_dir",
	"storage-driver": "storage.driver",
	"storage-dsn":    "storage.dsn",
	"log-level":      "log.level",
	"due-days":       "loans.default_due_days",
}

func defaults(dataDir string) map[string]any {
	return map[string]any{
		"data_dir":               dataDir,
		"storage.driver":         DriverSQLite,
		"storage.dsn":            "",
		"loans.default_due_days": 14,
		"log.level":              "warn",
		"log.file":               "",
		"backup.driver":          BackupFS,
		"backup.dir":             "",
		"backup.s3.bucket":       "",
		"backup.s3.region":       "us-east-1",
		"backup.s3.endpoint":     "",
		"backup.s3.prefix":       "",
		"backup.s3.path_style":   false,
		"plugins.manifest":       "",
	}
}

// New returns the default configuration rooted at dataDir.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Config{
		DataDir: dataDir,
		Storage: StorageConfig{Driver: DriverSQLite},
		Loans:   LoansConfig{DefaultDueDays: 14},
		Log:     LogConfig{Level: "warn"},
		Backup:  BackupConfig{Driver: BackupFS, S3: S3Config{Region: "us-east-1"}},
	}
	cfg.resolvePaths()
	return cfg, nil
}

// Load layers defaults, an optional libtrack.yaml, LIBTRACK_* environment
// variables and explicitly set flags, in increasing precedence.
func Load(dataDir, configFile string, flags *pflag.FlagSet) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	v := viper.New()
	for key, value := range defaults(dataDir) {
		v.SetDefault(key, value)
	}

	v.SetConfigName("libtrack")
	v.SetConfigType("yaml")
	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
	}
	v.AddConfigPath(dataDir)
	v.AddConfigPath(filepath.Join(dataDir, ".libtrack"))
	if userDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(userDir, "libtrack"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("libtrack")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.resolvePaths()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) resolvePaths() {
	stateDir := filepath.Join(c.DataDir, ".libtrack")
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if strings.TrimSpace(c.Storage.DSN) == "" {
		switch c.Storage.Driver {
		case DriverSQLite:
			c.Storage.DSN = filepath.Join(stateDir, "libtrack.db")
		case DriverFile:
			c.Storage.DSN = filepath.Join(stateDir, "library.yaml")
		}
	}
	if strings.TrimSpace(c.Log.File) == "" {
		c.Log.File = filepath.Join(stateDir, "libtrack.log")
	}
	if strings.TrimSpace(c.Backup.Dir) == "" {
		c.Backup.Dir = filepath.Join(stateDir, "backups")
	}
	if strings.TrimSpace(c.Plugins.Manifest) == "" {
		c.Plugins.Manifest = filepath.Join(c.DataDir, "plugins", "plugins.yaml")
	}
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite, DriverFile, DriverMemory:
	case DriverPostgres, DriverMySQL:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Loans.DefaultDueDays < 1 {
		return fmt.Errorf("loans.default_due_days must be positive, got %d", c.Loans.DefaultDueDays)
	}
	switch c.Backup.Driver {
	case BackupFS:
	case BackupS3:
		if strings.TrimSpace(c.Backup.S3.Bucket) == "" {
			return fmt.Errorf("backup.s3.bucket is required for the s3 backup driver")
		}
	default:
		return fmt.Errorf("unsupported backup driver %q", c.Backup.Driver)
	}
	return nil
}

// WriteFile stores c as YAML at path, creating parent directories.
func WriteFile(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
