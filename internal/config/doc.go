// Package config defines the format-agnostic entry points for configuring a
// launch: the Loader interface implemented by descriptor formats such as
// HCL, and the environment variables that supply defaults to the CLI.
//
// The `launch.Descriptor` a Loader returns is the single source of truth
// for the `launch` and `supervisor` packages. Concrete loaders live in
// separate packages.
package config
