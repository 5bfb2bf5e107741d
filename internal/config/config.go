package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/quantfolio/tapestry/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Chart       ChartConfig       `mapstructure:"chart"`
	Scalability ScalabilityConfig `mapstructure:"scalability"`
	Export      ExportConfig      `mapstructure:"export"`
	Artifacts   ArtifactConfig    `mapstructure:"artifacts"`
	Batch       BatchConfig       `mapstructure:"batch"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// ChartConfig selects the rendering engine and default surface geometry.
type ChartConfig struct {
	Engine string `mapstructure:"engine"` // "gg" or "gonumplot"; empty selects the default
	Mode   string `mapstructure:"mode"`   // "light" or "dark"
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

// Tier holds the two ascending breakpoints that split a count into three
// categories: count <= Low, Low < count <= High, count > High.
type Tier struct {
	Low  int `mapstructure:"low"`
	High int `mapstructure:"high"`
}

// ScalabilityConfig tunes the scalability manager.
type ScalabilityConfig struct {
	Volume    Tier          `mapstructure:"volume"`
	Timeline  Tier          `mapstructure:"timeline"`
	Density   Tier          `mapstructure:"density"`
	Cluster   ClusterConfig `mapstructure:"cluster"`
	MaxLabels int           `mapstructure:"max_labels"`
}

// ClusterConfig holds DBSCAN parameters. These are empirically tuned,
// deliberately configuration-driven rather than derived.
type ClusterConfig struct {
	Eps        float64 `mapstructure:"eps"`
	MinSamples int     `mapstructure:"min_samples"`
}

// ExportConfig controls artifact encoding.
type ExportConfig struct {
	Scale   float64  `mapstructure:"scale"` // 1 ~ 150 DPI, 2 ~ 300 DPI, 4 ~ 600 DPI
	Formats []string `mapstructure:"formats"`
}

// ArtifactConfig selects where exported artifacts land.
type ArtifactConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// BatchConfig bounds the render worker pool.
type BatchConfig struct {
	Workers    int           `mapstructure:"workers"`
	JobTimeout time.Duration `mapstructure:"job_timeout"`
}

// MetricsConfig holds metrics configuration. Path is the artifact key the
// text-format metrics dump is written under after a render run.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults. The threshold and
// cluster values match the tuning the report pipeline shipped with.
func Defaults() *Config {
	return &Config{
		Chart: ChartConfig{
			Engine: "gg",
			Mode:   "light",
			Width:  960,
			Height: 540,
		},
		Scalability: ScalabilityConfig{
			Volume:   Tier{Low: 50, High: 100},
			Timeline: Tier{Low: 3, High: 8},
			Density:  Tier{Low: 50, High: 150},
			Cluster: ClusterConfig{
				Eps:        0.5,
				MinSamples: 5,
			},
			MaxLabels: 20,
		},
		Export: ExportConfig{
			Scale:   2,
			Formats: []string{"png"},
		},
		Artifacts: ArtifactConfig{
			Type: "localfs",
			Path: "out",
		},
		Batch: BatchConfig{
			Workers:    4,
			JobTimeout: 60 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "metrics.prom",
		},
	}
}

// Validate checks the configuration for errors. Threshold and engine
// problems must surface here, before any rendering is attempted.
func (c *Config) Validate() error {
	// Chart validation
	switch c.Chart.Engine {
	case "", "gg", "gonumplot":
	default:
		return core.WrapError(core.ErrUnknownEngine,
			fmt.Errorf("engine %q (want gg or gonumplot)", c.Chart.Engine))
	}
	switch c.Chart.Mode {
	case "", "light", "dark":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("mode must be light or dark, got %q", c.Chart.Mode))
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("chart dimensions must be positive, got %dx%d", c.Chart.Width, c.Chart.Height))
	}

	// Threshold tiers must be strictly ascending
	for name, tier := range map[string]Tier{
		"volume":   c.Scalability.Volume,
		"timeline": c.Scalability.Timeline,
		"density":  c.Scalability.Density,
	} {
		if tier.Low <= 0 || tier.High <= tier.Low {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("%s thresholds must be strictly ascending positive ints, got (%d, %d)",
					name, tier.Low, tier.High))
		}
	}

	// Cluster validation
	if c.Scalability.Cluster.Eps <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cluster eps must be positive, got %f", c.Scalability.Cluster.Eps))
	}
	if c.Scalability.Cluster.MinSamples < 2 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cluster min_samples must be at least 2, got %d", c.Scalability.Cluster.MinSamples))
	}
	if c.Scalability.MaxLabels <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_labels must be positive, got %d", c.Scalability.MaxLabels))
	}

	// Export validation
	if c.Export.Scale <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("export scale must be positive, got %f", c.Export.Scale))
	}
	for _, f := range c.Export.Formats {
		if f != "png" && f != "svg" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unsupported export format %q", f))
		}
	}

	// Artifact validation
	switch c.Artifacts.Type {
	case "localfs":
		if c.Artifacts.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("artifacts path required for localfs"))
		}
	case "s3":
		if c.Artifacts.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when artifacts type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("artifacts type must be localfs or s3, got %q", c.Artifacts.Type))
	}

	// Batch validation
	if c.Batch.Workers < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("batch workers must be at least 1, got %d", c.Batch.Workers))
	}
	if c.Batch.JobTimeout <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("batch job_timeout must be positive, got %s", c.Batch.JobTimeout))
	}

	// Metrics validation
	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("metrics path required when metrics are enabled"))
	}

	return nil
}
