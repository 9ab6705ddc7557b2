// Package errors provides the classified error primitives used across astdoc.
//
// Every failure the transform engine, loader, store and renderers can report is a
// ClassifiedError carrying a category, a severity, a retry strategy and structured
// context. Package-level sentinels are declared with the builder and matched with
// the standard library:
//
//	var ErrMissingEnvVar = errors.TransformError("environment variable not set").Build()
//
//	return ErrMissingEnvVar.WithContext("variable", name)
//
//	if stderrors.Is(err, transform.ErrMissingEnvVar) { ... }
//
// Is compares category and message, so a sentinel decorated with context (or a
// builder-wrapped cause with the same message) still matches its sentinel.
package errors
