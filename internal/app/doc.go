// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary lifecycle: load a descriptor,
// build a plan, and optionally hand it to the supervisor. It is decoupled
// from any specific entrypoint like a CLI or server.
package app
