package config

import (
	"os"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownSampler = errors.New("config: unknown sampler type")
	ErrUnknownFamily  = errors.New("config: unknown bake family")
)

// SamplerTypes lists the accepted sampler.type values
var SamplerTypes = []string{"zerotwo", "stratified", "random"}

// BakeFamilies lists the accepted bake.family values
var BakeFamilies = []string{"coated-diffuse", "dielectric", "conductor", "diffuse"}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, errors.Wrapf(err, "loading config from %s", path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if !contains(SamplerTypes, c.Sampler.Type) {
		return errors.Wrapf(ErrUnknownSampler, "%q", c.Sampler.Type)
	}
	if c.Sampler.SamplesPerPixel <= 0 {
		return errors.Errorf("config: samples_per_pixel must be positive, got %d", c.Sampler.SamplesPerPixel)
	}
	if c.Sampler.Type == "zerotwo" && !core.IsPowerOf2(c.Sampler.SamplesPerPixel) {
		return errors.Errorf("config: zerotwo sampler needs a power-of-two sample count, got %d", c.Sampler.SamplesPerPixel)
	}
	if !contains(BakeFamilies, c.Bake.Family) {
		return errors.Wrapf(ErrUnknownFamily, "%q", c.Bake.Family)
	}
	if c.Bake.CosThetaRes < 2 || c.Bake.RoughRes < 2 {
		return errors.Errorf("config: bake resolution must be at least 2x2, got %dx%d", c.Bake.CosThetaRes, c.Bake.RoughRes)
	}
	if c.Bake.Eta <= 0 {
		return errors.Errorf("config: bake eta must be positive, got %g", c.Bake.Eta)
	}
	if c.Bake.K < 0 {
		return errors.Errorf("config: bake k must not be negative, got %g", c.Bake.K)
	}
	if c.Bake.Workers < 0 {
		return errors.Errorf("config: bake workers must not be negative, got %d", c.Bake.Workers)
	}
	return nil
}

// SaveTo writes the config to path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing config to %s", path)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
