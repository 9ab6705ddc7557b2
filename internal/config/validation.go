package config

import (
	"slices"

	"git.home.luguber.info/inful/astdoc/internal/foundation/errors"
	"git.home.luguber.info/inful/astdoc/internal/render"
)

// Validate checks a configuration after defaults were applied.
func (c *Config) Validate() error {
	v := configurationValidator{config: c}
	for _, check := range []func() error{v.validateRenderer, v.validateLimits, v.validateHeadingTypes} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func (cv configurationValidator) validateRenderer() error {
	if !slices.Contains(render.Names(), cv.config.Renderer) {
		return errors.ValidationError("unknown renderer").
			WithContext("renderer", cv.config.Renderer).
			WithContext("available", render.Names()).
			Build()
	}
	return nil
}

func (cv configurationValidator) validateLimits() error {
	l := cv.config.Limits
	for name, v := range map[string]int{
		"max_depth":         l.MaxDepth,
		"max_rescans":       l.MaxRescans,
		"max_include_depth": l.MaxIncludeDepth,
	} {
		if v < 0 {
			return errors.ValidationError("limit must not be negative").
				WithContext("limit", name).
				WithContext("value", v).
				Build()
		}
	}
	return nil
}

func (cv configurationValidator) validateHeadingTypes() error {
	for _, t := range cv.config.HeadingTypes {
		if t == "" {
			return errors.ValidationError("heading type must not be empty").Build()
		}
	}
	return nil
}
