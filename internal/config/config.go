package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"habitmap/internal/habit"
	"habitmap/internal/heatmap"
	"habitmap/internal/render"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Settings keys
const (
	KeyVaults            = "vaults"
	KeyValueField        = "value_field"
	KeyDateField         = "date_field"
	KeyAggregation       = "aggregation"
	KeyColorIntensityMin = "color_intensity_min"
	KeyColorIntensityMax = "color_intensity_max"
	KeyDefaultView       = "default_view"
	KeyWeekStartDay      = "week_start_day"
	KeyDebug             = "debug"
	KeyLogDir            = "log_dir"
)

const envPrefix = "HABITMAP"

// ErrUnknownKey is returned when getting or setting an unsupported key
var ErrUnknownKey = errors.New("unknown settings key")

// Config holds the unified application configuration
type Config struct {
	Vaults            []string
	ValueField        string
	DateField         string
	Aggregation       string
	ColorIntensityMin float64
	ColorIntensityMax float64 // 0 normalizes against the dataset maximum
	DefaultView       string
	WeekStartDay      string
	Debug             bool
	LogDir            string
	Path              string // settings file the values were read from
}

// CLIFlags holds parsed CLI flags
type CLIFlags struct {
	Vaults     []string
	Debug      bool
	ConfigPath string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyVaults, []string{})
	v.SetDefault(KeyValueField, "value")
	v.SetDefault(KeyDateField, "date")
	v.SetDefault(KeyAggregation, string(habit.Sum))
	v.SetDefault(KeyColorIntensityMin, 0.0)
	v.SetDefault(KeyColorIntensityMax, 0.0)
	v.SetDefault(KeyDefaultView, string(heatmap.Yearly))
	v.SetDefault(KeyWeekStartDay, string(heatmap.Monday))
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogDir, "")
}

// Load loads configuration with priority: CLI flags > env vars > config file > default
func Load(flags CLIFlags) (*Config, error) {
	path := flags.ConfigPath
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return nil, err
		}
	}

	store, err := Open(path)
	if err != nil {
		return nil, err
	}
	file := store.v

	// environment layer, kept apart from the file so Set never persists it
	env := viper.New()
	env.SetEnvPrefix(envPrefix)
	env.AutomaticEnv()

	cfg := &Config{Path: path}
	cfg.ValueField = pickString(env, file, KeyValueField)
	cfg.DateField = pickString(env, file, KeyDateField)
	cfg.Aggregation = strings.ToLower(pickString(env, file, KeyAggregation))
	cfg.DefaultView = strings.ToLower(pickString(env, file, KeyDefaultView))
	cfg.WeekStartDay = strings.ToLower(pickString(env, file, KeyWeekStartDay))
	cfg.LogDir = expandPath(pickString(env, file, KeyLogDir))

	cfg.ColorIntensityMin = file.GetFloat64(KeyColorIntensityMin)
	if env.IsSet(KeyColorIntensityMin) {
		cfg.ColorIntensityMin = env.GetFloat64(KeyColorIntensityMin)
	}
	cfg.ColorIntensityMax = file.GetFloat64(KeyColorIntensityMax)
	if env.IsSet(KeyColorIntensityMax) {
		cfg.ColorIntensityMax = env.GetFloat64(KeyColorIntensityMax)
	}
	cfg.Debug = file.GetBool(KeyDebug)
	if env.IsSet(KeyDebug) {
		cfg.Debug = env.GetBool(KeyDebug)
	}

	cfg.Vaults = expandPaths(file.GetStringSlice(KeyVaults))
	if env.IsSet(KeyVaults) {
		cfg.Vaults = expandPaths(parseColonSeparated(env.GetString(KeyVaults)))
	}

	// Priority 1: CLI flags override everything
	if len(flags.Vaults) > 0 {
		cfg.Vaults = expandPaths(flags.Vaults)
	}
	if flags.Debug {
		cfg.Debug = true
	}

	if len(cfg.Vaults) == 0 {
		defaultDir, err := GetDefaultDir()
		if err != nil {
			return nil, err
		}
		cfg.Vaults = []string{defaultDir}
	}
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Dir(path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func pickString(env, file *viper.Viper, key string) string {
	if env.IsSet(key) {
		return env.GetString(key)
	}
	return file.GetString(key)
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := habit.ParseMethod(c.Aggregation); err != nil {
		return fmt.Errorf("config %s: %w", KeyAggregation, err)
	}
	if _, err := heatmap.ParseWeekStart(c.WeekStartDay); err != nil {
		return fmt.Errorf("config %s: %w", KeyWeekStartDay, err)
	}
	switch heatmap.ViewType(c.DefaultView) {
	case heatmap.Yearly, heatmap.Monthly:
	default:
		return fmt.Errorf("config %s: unknown view %q (want yearly or monthly)", KeyDefaultView, c.DefaultView)
	}
	if c.ColorIntensityMin < 0 || c.ColorIntensityMax < 0 {
		return fmt.Errorf("config color intensity bounds must not be negative")
	}
	if c.ColorIntensityMax > 0 && c.ColorIntensityMin >= c.ColorIntensityMax {
		return fmt.Errorf("config %s (%v) must be below %s (%v)",
			KeyColorIntensityMin, c.ColorIntensityMin, KeyColorIntensityMax, c.ColorIntensityMax)
	}
	return nil
}

// HeatmapDefaults returns the block defaults taken from settings.
func (c *Config) HeatmapDefaults() heatmap.Defaults {
	d := heatmap.DefaultDefaults()
	if c.ValueField != "" {
		d.ValueField = c.ValueField
	}
	if c.DateField != "" {
		d.DateField = c.DateField
	}
	if ws, err := heatmap.ParseWeekStart(c.WeekStartDay); err == nil {
		d.WeekStart = ws
	}
	if c.DefaultView == string(heatmap.Monthly) {
		d.ViewType = heatmap.Monthly
	}
	return d
}

// Method returns the global aggregation, sum when unset.
func (c *Config) Method() habit.Method {
	m, err := habit.ParseMethod(c.Aggregation)
	if err != nil {
		return habit.Sum
	}
	return m
}

// Scale returns the color scale configured by the intensity bounds.
func (c *Config) Scale() heatmap.Scale {
	s := heatmap.DefaultScale()
	s.Min = c.ColorIntensityMin
	s.Max = c.ColorIntensityMax
	return s
}

// RenderOptions returns the pipeline settings derived from the config.
func (c *Config) RenderOptions() render.Options {
	opts := render.DefaultOptions()
	opts.Defaults = c.HeatmapDefaults()
	opts.Aggregation = c.Method()
	opts.Scale = c.Scale()
	return opts
}

// GetDefaultDir returns the default vault, the working directory
func GetDefaultDir() (string, error) {
	return os.Getwd()
}

// ConfigPath returns the settings file path, honoring HABITMAP_CONFIG
func ConfigPath() (string, error) {
	if override := os.Getenv(envPrefix + "_CONFIG"); override != "" {
		return expandPath(override), nil
	}
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "habitmap", "config.yaml"), nil
}

// Store is the persisted settings file
type Store struct {
	v    *viper.Viper
	path string
}

// Open reads the settings file at path. A missing file yields defaults.
func Open(path string) (*Store, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return &Store{v: v, path: path}, nil
}

// Path returns the settings file path
func (s *Store) Path() string {
	return s.path
}

// Keys returns every supported key, sorted
func Keys() []string {
	keys := []string{
		KeyVaults, KeyValueField, KeyDateField, KeyAggregation,
		KeyColorIntensityMin, KeyColorIntensityMax, KeyDefaultView,
		KeyWeekStartDay, KeyDebug, KeyLogDir,
	}
	sort.Strings(keys)
	return keys
}

func knownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns a setting formatted for display.
func (s *Store) Get(key string) (string, error) {
	if !knownKey(key) {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if key == KeyVaults {
		return strings.Join(s.v.GetStringSlice(key), ":"), nil
	}
	return s.v.GetString(key), nil
}

// Set validates and persists a single setting.
func (s *Store) Set(key, value string) error {
	if !knownKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch key {
	case KeyVaults:
		parsed = parseColonSeparated(value)
	case KeyAggregation:
		m, err := habit.ParseMethod(value)
		if err != nil {
			return err
		}
		parsed = string(m)
	case KeyWeekStartDay:
		ws, err := heatmap.ParseWeekStart(value)
		if err != nil {
			return err
		}
		parsed = string(ws)
	case KeyDefaultView:
		switch heatmap.ViewType(strings.ToLower(value)) {
		case heatmap.Yearly, heatmap.Monthly:
			parsed = strings.ToLower(value)
		default:
			return fmt.Errorf("unknown view %q (want yearly or monthly)", value)
		}
	case KeyColorIntensityMin, KeyColorIntensityMax:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%s must be a non-negative number, got %q", key, value)
		}
		parsed = f
	case KeyDebug:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		parsed = b
	default:
		if value == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
		parsed = value
	}

	s.v.Set(key, parsed)
	return s.write()
}

func (s *Store) write() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return s.v.WriteConfigAs(s.path)
}

// EnsureConfigFile creates the config file with defaults if it doesn't exist
func EnsureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	store, err := Open(path)
	if err != nil {
		return err
	}
	return store.write()
}

func parseColonSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ":")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func expandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPaths(paths []string) []string {
	result := make([]string, len(paths))
	for i, p := range paths {
		result[i] = expandPath(p)
	}
	return result
}
