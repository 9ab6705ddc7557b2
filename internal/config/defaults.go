package config

import (
	"git.home.luguber.info/inful/astdoc/internal/render"
	"git.home.luguber.info/inful/astdoc/internal/transform"
)

// Default values for fields left empty in the file.
const (
	DefaultRenderer = render.HTMLName
	DefaultDataDir  = "data"
)

// DefaultApplier applies defaults for one configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

type renderDefaults struct{}

func (renderDefaults) Domain() string { return "render" }

func (renderDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.Renderer == "" {
		cfg.Renderer = DefaultRenderer
	}
	return nil
}

type dataDefaults struct{}

func (dataDefaults) Domain() string { return "data" }

func (dataDefaults) ApplyDefaults(cfg *Config) error {
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	return nil
}

type transformDefaults struct{}

func (transformDefaults) Domain() string { return "transform" }

func (transformDefaults) ApplyDefaults(cfg *Config) error {
	if len(cfg.HeadingTypes) == 0 {
		cfg.HeadingTypes = []string{transform.DefaultHeadingType}
	}
	d := transform.DefaultLimits()
	if cfg.Limits.MaxDepth == 0 {
		cfg.Limits.MaxDepth = d.MaxDepth
	}
	if cfg.Limits.MaxRescans == 0 {
		cfg.Limits.MaxRescans = d.MaxRescans
	}
	if cfg.Limits.MaxIncludeDepth == 0 {
		cfg.Limits.MaxIncludeDepth = d.MaxIncludeDepth
	}
	return nil
}

var appliers = []DefaultApplier{renderDefaults{}, dataDefaults{}, transformDefaults{}}

// ApplyDefaults fills empty fields in every domain.
func ApplyDefaults(cfg *Config) error {
	for _, a := range appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

// TransformLimits converts the configured limits for the engine.
func (c *Config) TransformLimits() transform.Limits {
	return transform.Limits{
		MaxDepth:        c.Limits.MaxDepth,
		MaxRescans:      c.Limits.MaxRescans,
		MaxIncludeDepth: c.Limits.MaxIncludeDepth,
	}
}
