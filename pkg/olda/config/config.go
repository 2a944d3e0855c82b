// Package config loads engine hyperparameters and auxiliary corpus
// configuration (stopword lists) from YAML files, the way korel's config
// package loads its taxonomy, stoplist, and dictionary files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/olda/pkg/olda/internalerr"
)

// Params holds the particle filter's hyperparameters, matching the
// configuration surface of spec.md §6.
type Params struct {
	Topics            int     `yaml:"topics"`
	Alpha             float64 `yaml:"alpha"`
	Beta              float64 `yaml:"beta"`
	ReservoirCapacity int     `yaml:"reservoir_capacity"`
	Particles         int     `yaml:"particles"`
	ESSThreshold      float64 `yaml:"ess_threshold"`
	RejuvBatch        int     `yaml:"rejuv_batch"`
	RejuvMCMCSteps    int     `yaml:"rejuv_mcmc_steps"`
	Seed              int64   `yaml:"seed"`
}

// Default returns a small but workable parameter set, useful for demos
// and as a base the caller can override fields on.
func Default() Params {
	return Params{
		Topics:            10,
		Alpha:             0.1,
		Beta:              0.01,
		ReservoirCapacity: 200,
		Particles:         20,
		ESSThreshold:      10,
		RejuvBatch:        30,
		RejuvMCMCSteps:    1,
		Seed:              1,
	}
}

// Validate checks that every parameter is in a usable range.
func (p Params) Validate() error {
	switch {
	case p.Topics <= 0:
		return fmt.Errorf("topics must be positive: %w", internalerr.ErrInvalidConfig)
	case p.Alpha <= 0:
		return fmt.Errorf("alpha must be positive: %w", internalerr.ErrInvalidConfig)
	case p.Beta <= 0:
		return fmt.Errorf("beta must be positive: %w", internalerr.ErrInvalidConfig)
	case p.Particles <= 0:
		return fmt.Errorf("particles must be positive: %w", internalerr.ErrInvalidConfig)
	case p.ReservoirCapacity < 0:
		return fmt.Errorf("reservoir capacity must be non-negative: %w", internalerr.ErrInvalidConfig)
	case p.RejuvBatch < 0:
		return fmt.Errorf("rejuv batch must be non-negative: %w", internalerr.ErrInvalidConfig)
	case p.RejuvMCMCSteps < 0:
		return fmt.Errorf("rejuv mcmc steps must be non-negative: %w", internalerr.ErrInvalidConfig)
	}
	return nil
}

// Load reads engine parameters from a YAML file. An empty path returns
// Default() unchanged, mirroring korel/config.Loader's per-field
// empty-path defaulting.
func Load(path string) (Params, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("load params: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("parse params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Stoplist represents a plain word list of tokens to filter before
// ingesting, the same shape as korel/config.Stoplist.
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file.
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load stoplist: %w", err)
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("parse stoplist: %w", err)
	}
	return &sl, nil
}
