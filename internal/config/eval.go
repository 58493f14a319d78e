package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"github.com/fcalvet/froc/internal/froc"
)

// DefaultConfigPath is the path to the canonical evaluation defaults file.
const DefaultConfigPath = "config/froc.defaults.json"

// Evaluation modes.
const (
	ModeSweep = "sweep"
	ModeRank  = "rank"
)

// EvalConfig holds the evaluation settings. Every field is optional; the
// Get* methods supply defaults for fields left unset. Environment variables
// override values loaded from JSON when ApplyEnv is called.
type EvalConfig struct {
	Mode            *string  `json:"mode,omitempty" env:"FROC_MODE, overwrite, noinit"`
	AllowedDistance *float64 `json:"allowed_distance,omitempty" env:"FROC_ALLOWED_DISTANCE, overwrite, noinit"`
	NumThresholds   *int     `json:"num_thresholds,omitempty" env:"FROC_NUM_THRESHOLDS, overwrite, noinit"`
	RangeLow        *float64 `json:"range_low,omitempty" env:"FROC_RANGE_LOW, overwrite, noinit"`
	RangeHigh       *float64 `json:"range_high,omitempty" env:"FROC_RANGE_HIGH, overwrite, noinit"`
	Connectivity    *string  `json:"connectivity,omitempty" env:"FROC_CONNECTIVITY, overwrite, noinit"`
	Workers         *int     `json:"workers,omitempty" env:"FROC_WORKERS, overwrite, noinit"`

	// Output
	LogLevel   *string `json:"log_level,omitempty" env:"FROC_LOG_LEVEL, overwrite, noinit"`
	OutputDir  *string `json:"output_dir,omitempty" env:"FROC_OUTPUT_DIR, overwrite, noinit"`
	DBPath     *string `json:"db_path,omitempty" env:"FROC_DB_PATH, overwrite, noinit"`
	AssetsHost *string `json:"assets_host,omitempty" env:"FROC_ASSETS_HOST, overwrite, noinit"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptyEvalConfig returns an EvalConfig with all fields unset.
func EmptyEvalConfig() *EvalConfig {
	return &EvalConfig{}
}

// LoadEvalConfig loads an EvalConfig from a JSON file. The file must have a
// .json extension and be at most 1MB. Fields omitted from the file keep
// their defaults.
func LoadEvalConfig(path string) (*EvalConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyEvalConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath from the current directory
// or one of its parents. Panics if the file cannot be loaded, intended for
// test setup.
func MustLoadDefaultConfig() *EvalConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/froc/report/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadEvalConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// ApplyEnv overrides fields from FROC_* environment variables and
// validates the result.
func (c *EvalConfig) ApplyEnv(ctx context.Context) error {
	return c.ApplyEnvFrom(ctx, envconfig.OsLookuper())
}

// ApplyEnvFrom is ApplyEnv with an explicit variable source.
func (c *EvalConfig) ApplyEnvFrom(ctx context.Context, l envconfig.Lookuper) error {
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: c, Lookuper: l}); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Validate checks that the configuration values are valid.
func (c *EvalConfig) Validate() error {
	if c.Mode != nil {
		switch strings.ToLower(*c.Mode) {
		case ModeSweep, ModeRank:
		default:
			return fmt.Errorf("mode must be %q or %q, got %q", ModeSweep, ModeRank, *c.Mode)
		}
	}
	if c.AllowedDistance != nil && !(*c.AllowedDistance >= 0) {
		return fmt.Errorf("allowed_distance must be non-negative, got %f", *c.AllowedDistance)
	}
	if c.NumThresholds != nil && *c.NumThresholds < 0 {
		return fmt.Errorf("num_thresholds must be non-negative, got %d", *c.NumThresholds)
	}
	if (c.RangeLow == nil) != (c.RangeHigh == nil) {
		return fmt.Errorf("range_low and range_high must be set together")
	}
	if r := c.GetRange(); r != nil {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	if c.Connectivity != nil {
		if _, err := froc.ParseConnectivity(*c.Connectivity); err != nil {
			return err
		}
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	return nil
}

// GetMode returns the evaluation mode, "sweep" by default.
func (c *EvalConfig) GetMode() string {
	if c.Mode == nil || *c.Mode == "" {
		return ModeSweep
	}
	return strings.ToLower(*c.Mode)
}

// GetAllowedDistance returns the match distance, 0 by default.
func (c *EvalConfig) GetAllowedDistance() float64 {
	if c.AllowedDistance == nil {
		return 0
	}
	return *c.AllowedDistance
}

// GetNumThresholds returns the number of thresholds.
func (c *EvalConfig) GetNumThresholds() int {
	if c.NumThresholds == nil || *c.NumThresholds == 0 {
		return froc.DefaultNumThresholds
	}
	return *c.NumThresholds
}

// GetRange returns the explicit threshold range, or nil to follow the data.
func (c *EvalConfig) GetRange() *froc.ThresholdRange {
	if c.RangeLow == nil || c.RangeHigh == nil {
		return nil
	}
	return &froc.ThresholdRange{Low: *c.RangeLow, High: *c.RangeHigh}
}

// GetConnectivity returns the component connectivity, full by default.
func (c *EvalConfig) GetConnectivity() froc.Connectivity {
	if c.Connectivity == nil {
		return froc.FullConnectivity
	}
	conn, err := froc.ParseConnectivity(*c.Connectivity)
	if err != nil {
		return froc.FullConnectivity
	}
	return conn
}

// GetWorkers returns the concurrency bound, 0 meaning GOMAXPROCS.
func (c *EvalConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetLogLevel returns the log level name, "info" by default.
func (c *EvalConfig) GetLogLevel() string {
	if c.LogLevel == nil || *c.LogLevel == "" {
		return "info"
	}
	return *c.LogLevel
}

// GetOutputDir returns the report directory, "out" by default.
func (c *EvalConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "out"
	}
	return *c.OutputDir
}

// GetDBPath returns the run store path. Empty disables persistence.
func (c *EvalConfig) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// GetAssetsHost returns the echarts assets host, empty for the library
// default.
func (c *EvalConfig) GetAssetsHost() string {
	if c.AssetsHost == nil {
		return ""
	}
	return *c.AssetsHost
}

// SweepParams builds the threshold sweep parameters.
func (c *EvalConfig) SweepParams(ids []string) froc.SweepParams {
	return froc.SweepParams{
		AllowedDistance: c.GetAllowedDistance(),
		NumThresholds:   c.GetNumThresholds(),
		Range:           c.GetRange(),
		Connectivity:    c.GetConnectivity(),
		Workers:         c.GetWorkers(),
		IDs:             ids,
	}
}

// RankParams builds the rank sweep parameters.
func (c *EvalConfig) RankParams(ids []string) froc.RankParams {
	return froc.RankParams{
		AllowedDistance: c.GetAllowedDistance(),
		Connectivity:    c.GetConnectivity(),
		Workers:         c.GetWorkers(),
		IDs:             ids,
	}
}
