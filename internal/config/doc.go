// Package config loads popstand.yaml.
//
// Resolution order, lowest to highest: built-in defaults, the YAML file,
// POPSTAND_* environment variables. Command-line flags are applied by the
// caller on top of the result. The merged value is checked against the
// embedded CUE schema before it is returned.
package config
