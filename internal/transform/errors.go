package transform

import (
	"git.home.luguber.info/inful/astdoc/internal/ast"
	"git.home.luguber.info/inful/astdoc/internal/foundation/errors"
)

var (
	// ErrUnknownTransform reports a marker naming a transform absent from the registry.
	ErrUnknownTransform = errors.TransformError("unknown transform").Build()

	// ErrMissingEnvVar reports an env_var marker whose variable is unset.
	ErrMissingEnvVar = errors.TransformError("environment variable is not set").
				WithContext("hint", "export the variable or list an env file in the config").
				Build()

	// ErrInclusionLoad wraps any failure to read or parse an included document.
	ErrInclusionLoad = errors.LoadError("failed to load included document").Build()

	// ErrPruneRoot reports that pruning would have to remove the root of its own scope.
	ErrPruneRoot = errors.TransformError("max_level prunes the root of the pruning scope").Build()

	// ErrInvalidTransform reports a marker with missing or malformed parameters.
	ErrInvalidTransform = errors.TransformError("invalid transformation parameters").Build()

	// ErrInvalidRegistration reports a Register call with an empty name, a nil
	// transform, or a name that is already taken.
	ErrInvalidRegistration = errors.ValidationError("invalid transform registration").Build()

	// ErrUnconsumedMarker reports a marker that survived a complete run.
	ErrUnconsumedMarker = errors.TransformError("transformation marker was not consumed").Build()

	// ErrRecursionLimit is shared with the walker.
	ErrRecursionLimit = ast.ErrRecursionLimit

	// ErrChildNotFound is shared with the tree.
	ErrChildNotFound = ast.ErrChildNotFound
)
