// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package launch resolves a declarative launch descriptor into an ordered
// list of process-launch requests.
//
// # Core Concepts
//
//   - ArgumentDeclaration: a named input with an optional default. Callers
//     override arguments by name; Resolve turns declarations plus overrides
//     into a flat Values mapping.
//
//   - Substitution: a deferred string. Literals, argument references, joined
//     paths and concatenations are provided here; format adapters (such as
//     the HCL loader) contribute their own expression-backed implementations.
//
//   - Condition: decides whether a process takes part in a launch. A
//     condition bound to an argument is true only when the value is "true"
//     or "1" (case-insensitive). Anything else is false, never an error.
//
//   - ParameterLayer: one source of parameters for a process, either a file
//     or an inline mapping. Layers merge left to right, later keys winning.
//
//   - Descriptor: the immutable aggregate of arguments, processes, lifecycle
//     groups and QoS profiles. It is validated once, when constructed, and
//     Build can then be called any number of times with different overrides.
//
// The package performs no process management. A Plan is handed to a
// supervisor, which decides how and when the requests are started.
package launch
