package transform

// DefaultHeadingType is the node type treated as a heading when none is configured.
const DefaultHeadingType = "Head"

// Builtins returns the built-in transforms keyed by name.
func Builtins(headingTypes ...string) map[string]Transform {
	if len(headingTypes) == 0 {
		headingTypes = []string{DefaultHeadingType}
	}
	return map[string]Transform{
		NameEnvVar:               EnvVar{},
		NameIncludeAST:           IncludeAST{},
		NameComputeHeadingLevels: ComputeHeadingLevels{HeadingTypes: headingTypes},
		NamePruneHeadingLevels:   PruneHeadingLevels{},
	}
}
