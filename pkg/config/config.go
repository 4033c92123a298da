// Package config handles loading and validating tool configuration.
package config

// Config holds all settings for the command-line tools.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Cache   CacheConfig   `yaml:"cache"`
	Sampler SamplerConfig `yaml:"sampler"`
	Bake    BakeConfig    `yaml:"bake"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// CacheConfig controls the geometry buffer caches.
type CacheConfig struct {
	// VerifyContents compares buffer contents on every hash hit and panics on
	// a collision. Off by default.
	VerifyContents bool `yaml:"verify_contents"`
}

// SamplerConfig selects the pixel sampler used by baking and diagnostics.
type SamplerConfig struct {
	Type            string `yaml:"type"` // "zerotwo", "stratified" or "random"
	SamplesPerPixel int    `yaml:"samples_per_pixel"`
	Seed            int    `yaml:"seed"`
}

// BakeConfig holds albedo table baking settings.
type BakeConfig struct {
	Family      string  `yaml:"family"`
	CosThetaRes int     `yaml:"cos_theta_res"`
	RoughRes    int     `yaml:"roughness_res"`
	Eta         float64 `yaml:"eta"`
	K           float64 `yaml:"k"` // conductor absorption, used by the conductor family
	Workers     int     `yaml:"workers"`
	Output      string  `yaml:"output"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Cache: CacheConfig{
			VerifyContents: false,
		},
		Sampler: SamplerConfig{
			Type:            "zerotwo",
			SamplesPerPixel: 256,
			Seed:            0,
		},
		Bake: BakeConfig{
			Family:      "coated-diffuse",
			CosThetaRes: 32,
			RoughRes:    16,
			Eta:         1.5,
			K:           3.0,
			Workers:     0,
			Output:      "",
		},
	}
}
