package utils

import (
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "GOL"

// Config holds the configuration for the simulation
type Config struct {
	Width          int           `mapstructure:"width"`
	Height         int           `mapstructure:"height"`
	Generations    int           `mapstructure:"generations"`
	FrameRate      time.Duration `mapstructure:"frame_rate"`
	StopWhenStable bool          `mapstructure:"stop_when_stable"`
	UseBoundedGrid bool          `mapstructure:"use_bounded_grid"`
	UseParallel    bool          `mapstructure:"use_parallel"`
	Workers        int           `mapstructure:"workers"`
	Renderer       string        `mapstructure:"renderer"`
	ClearScreen    bool          `mapstructure:"clear_screen"`
	ShowStatus     bool          `mapstructure:"show_status"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	Seed           SeedConfig    `mapstructure:"seed"`
	Window         WindowConfig  `mapstructure:"window"`
}

// SeedConfig selects where the initial generation comes from
type SeedConfig struct {
	Cells   [][]int `mapstructure:"cells"`
	File    string  `mapstructure:"file"`
	Pattern string  `mapstructure:"pattern"`
	Density float64 `mapstructure:"density"`
	RNGSeed int64   `mapstructure:"rng_seed"`
}

// WindowConfig holds settings for the graphical renderer
type WindowConfig struct {
	CellSize           int `mapstructure:"cell_size"`
	TicksPerGeneration int `mapstructure:"ticks_per_generation"`
}

const (
	RendererTerminal = "terminal"
	RendererWindow   = "window"
	RendererNone     = "none"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("width", 30)
	v.SetDefault("height", 60)
	v.SetDefault("generations", 1000)
	v.SetDefault("frame_rate", 150*time.Millisecond)
	v.SetDefault("stop_when_stable", true)
	v.SetDefault("use_bounded_grid", false)
	v.SetDefault("use_parallel", false)
	v.SetDefault("workers", 0)
	v.SetDefault("renderer", RendererTerminal)
	v.SetDefault("clear_screen", true)
	v.SetDefault("show_status", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	v.SetDefault("seed.file", "")
	v.SetDefault("seed.pattern", "random")
	v.SetDefault("seed.density", 0.15)
	v.SetDefault("seed.rng_seed", 0)

	v.SetDefault("window.cell_size", 12)
	v.SetDefault("window.ticks_per_generation", 6)
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults always decode
	_ = v.Unmarshal(&config)
	return config
}

func newViper(filename string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	if filename != "" {
		v.SetConfigFile(filename)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig loads configuration from a YAML/JSON/TOML file, overlaid with
// GOL_* environment variables. An empty filename loads defaults and env only.
func LoadConfig(filename string) (Config, error) {
	v := newViper(filename)
	if filename != "" {
		if err := v.ReadInConfig(); err != nil {
			return DefaultConfig(), errors.Wrapf(err, "[LoadConfig] failed to read file: %+v", filename)
		}
	}
	return decodeConfig(v, filename)
}

// decodeConfig unmarshals and validates whatever v has loaded
func decodeConfig(v *viper.Viper, filename string) (Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return DefaultConfig(), errors.Wrapf(err, "[LoadConfig] failed to unmarshal data from file: %+v", filename)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// Validate rejects values no simulation can be built from
func (c Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.Wrapf(ErrInvalidConfiguration, "[Config.Validate] "+format, args...)
	}

	if len(c.Seed.Cells) == 0 && c.Seed.File == "" {
		if c.Width <= 0 || c.Height <= 0 {
			return invalid("width and height must be positive, got %dx%d", c.Width, c.Height)
		}
	}
	if c.Generations < 0 {
		return invalid("generations must be non-negative, got %d", c.Generations)
	}
	if c.FrameRate < 0 {
		return invalid("frame_rate must be non-negative, got %s", c.FrameRate)
	}
	if c.Workers < 0 {
		return invalid("workers must be non-negative, got %d", c.Workers)
	}
	switch c.Renderer {
	case RendererTerminal, RendererWindow, RendererNone:
	default:
		return invalid("unknown renderer %q", c.Renderer)
	}
	if c.Seed.Density < 0 || c.Seed.Density > 1 {
		return invalid("seed.density must be between 0 and 1, got %v", c.Seed.Density)
	}
	if c.Window.CellSize <= 0 {
		return invalid("window.cell_size must be positive")
	}
	if c.Window.TicksPerGeneration <= 0 {
		return invalid("window.ticks_per_generation must be positive")
	}
	return nil
}

// ConfigWatcher reloads a config file when it changes on disk
type ConfigWatcher struct {
	v        *viper.Viper
	filename string

	mu       sync.Mutex
	onChange func(Config)
	onError  func(error)
}

// WatchConfig starts watching filename. onChange receives every config that
// validates after a write; onError receives reload failures. Callbacks run on
// the watcher goroutine.
func WatchConfig(filename string, onChange func(Config), onError func(error)) (*ConfigWatcher, error) {
	if filename == "" {
		return nil, errors.New("[WatchConfig] no config file to watch")
	}
	w := &ConfigWatcher{
		v:        newViper(filename),
		filename: filename,
		onChange: onChange,
		onError:  onError,
	}
	if err := w.v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "[WatchConfig] failed to read file: %+v", filename)
	}

	w.v.OnConfigChange(w.handle)
	w.v.WatchConfig()
	return w, nil
}

func (w *ConfigWatcher) handle(e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// The watching instance keeps its old settings when the new file does not
	// parse, so read it again on a fresh one to see the error.
	config, err := w.reload()
	if err != nil {
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	if w.onChange != nil {
		w.onChange(config)
	}
}

func (w *ConfigWatcher) reload() (Config, error) {
	v := newViper(w.filename)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "[ConfigWatcher.reload] failed to read file: %+v", w.filename)
	}
	return decodeConfig(v, w.filename)
}
