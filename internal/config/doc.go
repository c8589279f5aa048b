// Package config defines the format-agnostic configuration model for the
// application, along with the Loader interface that concrete formats
// implement.
//
// The `config.Model` is the single source of truth for the component
// definitions and the scripted data steps the application runs. The HCL
// implementation lives in internal/hclconfig.
package config
