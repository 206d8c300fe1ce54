package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/loykin/launchr/internal/logger"
	"github.com/loykin/launchr/internal/supervisor"
)

// EnvPrefix prefixes environment overrides, e.g. LAUNCHR_SERVER_LISTEN.
const EnvPrefix = "LAUNCHR"

// File represents the top-level config file.
type File struct {
	Log       LogConfig        `toml:"log" mapstructure:"log"`
	Server    ServerConfig     `toml:"server" mapstructure:"server"`
	Metrics   MetricsConfig    `toml:"metrics" mapstructure:"metrics"`
	History   HistoryConfig    `toml:"history" mapstructure:"history"`
	Launchers []LauncherConfig `toml:"launchers" mapstructure:"launchers"`
}

type LogConfig struct {
	Level      string `toml:"level" mapstructure:"level"`
	Format     string `toml:"format" mapstructure:"format"`
	Dir        string `toml:"dir" mapstructure:"dir"`
	Path       string `toml:"path" mapstructure:"path"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

type ServerConfig struct {
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Listen  string `toml:"listen" mapstructure:"listen"`
}

type HistoryConfig struct {
	DSNs []string `toml:"dsns" mapstructure:"dsns"`
}

type LauncherConfig struct {
	Name         string        `toml:"name" mapstructure:"name"`
	Path         string        `toml:"path" mapstructure:"path"`
	Verbose      bool          `toml:"verbose" mapstructure:"verbose"`
	AutoLaunch   bool          `toml:"autolaunch" mapstructure:"autolaunch"`
	PollInterval time.Duration `toml:"poll_interval" mapstructure:"poll_interval"`
	Args         []ArgPair     `toml:"args" mapstructure:"args"`
	Output       *OutputConfig `toml:"output" mapstructure:"output"`
}

// ArgPair is one named argument. Order in the file is launch order.
type ArgPair struct {
	Key   string `toml:"key" mapstructure:"key"`
	Value string `toml:"value" mapstructure:"value"`
}

type OutputConfig struct {
	Dir        string `toml:"dir" mapstructure:"dir"`
	Stdout     string `toml:"stdout" mapstructure:"stdout"`
	Stderr     string `toml:"stderr" mapstructure:"stderr"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.listen", "")
	v.SetDefault("server.base_path", "/api")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "")
	v.SetDefault("history.dsns", []string{})
}

// configType picks the viper parser from the file extension; toml is the default.
func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return "toml"
	}
}

// Load reads path and applies LAUNCHR_* environment overrides. An empty path
// yields defaults plus environment.
func Load(path string) (*File, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(configType(path))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var fc File
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return &fc, nil
}

// Validate checks launcher entries. Executable existence is left to
// supervisor.Create.
func (f *File) Validate() error {
	if _, err := logger.ParseLevel(f.Log.Level); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(f.Launchers))
	var errs []error
	for i, lc := range f.Launchers {
		name := strings.TrimSpace(lc.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("launcher #%d requires name", i))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("duplicate launcher name %q", name))
		}
		seen[name] = struct{}{}
		if strings.TrimSpace(lc.Path) == "" {
			errs = append(errs, fmt.Errorf("launcher %s requires path", name))
		}
		if lc.PollInterval < 0 {
			errs = append(errs, fmt.Errorf("launcher %s has negative poll_interval", name))
		}
	}
	return errors.Join(errs...)
}

// LoggerConfig converts the [log] section.
func (f *File) LoggerConfig() logger.Config {
	return logger.Config{
		Level:  f.Log.Level,
		Format: f.Log.Format,
		File: logger.FileConfig{
			Path:       f.Log.Path,
			MaxSizeMB:  f.Log.MaxSizeMB,
			MaxBackups: f.Log.MaxBackups,
			MaxAgeDays: f.Log.MaxAgeDays,
			Compress:   f.Log.Compress,
		},
	}
}

// Launcher returns the launcher with the given name.
func (f *File) Launcher(name string) (LauncherConfig, bool) {
	for _, lc := range f.Launchers {
		if lc.Name == name {
			return lc, true
		}
	}
	return LauncherConfig{}, false
}

// SupervisorConfigs converts every launcher; [log] rotation settings are the
// defaults for launcher output.
func (f *File) SupervisorConfigs() []supervisor.Config {
	out := make([]supervisor.Config, 0, len(f.Launchers))
	for _, lc := range f.Launchers {
		out = append(out, lc.toSupervisorConfig(f.Log))
	}
	return out
}

// ToSupervisorConfig converts a single launcher entry without file-level defaults.
func (lc LauncherConfig) ToSupervisorConfig() supervisor.Config {
	return lc.toSupervisorConfig(LogConfig{})
}

func (lc LauncherConfig) toSupervisorConfig(base LogConfig) supervisor.Config {
	keys := make([]string, 0, len(lc.Args))
	values := make([]string, 0, len(lc.Args))
	for _, a := range lc.Args {
		keys = append(keys, a.Key)
		values = append(values, a.Value)
	}
	cfg := supervisor.Config{
		Name:           lc.Name,
		Path:           lc.Path,
		ArgumentKeys:   keys,
		ArgumentValues: values,
		Verbose:        lc.Verbose,
		PollInterval:   lc.PollInterval,
	}
	if o := lc.Output; o != nil {
		fc := logger.FileConfig{
			Dir:        base.Dir,
			MaxSizeMB:  base.MaxSizeMB,
			MaxBackups: base.MaxBackups,
			MaxAgeDays: base.MaxAgeDays,
			Compress:   base.Compress,
		}
		if o.Dir != "" {
			fc.Dir = o.Dir
		}
		fc.StdoutPath = o.Stdout
		fc.StderrPath = o.Stderr
		if o.MaxSizeMB != 0 {
			fc.MaxSizeMB = o.MaxSizeMB
		}
		if o.MaxBackups != 0 {
			fc.MaxBackups = o.MaxBackups
		}
		if o.MaxAgeDays != 0 {
			fc.MaxAgeDays = o.MaxAgeDays
		}
		if o.Compress {
			fc.Compress = true
		}
		cfg.Output = fc
	}
	return cfg
}
