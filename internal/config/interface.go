package config

import (
	"context"

	"github.com/specialistvlad/launchgrid/internal/launch"
)

// Loader is the interface for a format-specific descriptor loader.
type Loader interface {
	// Load reads every descriptor file under paths and assembles them into
	// one validated descriptor.
	Load(ctx context.Context, paths ...string) (*launch.Descriptor, error)
}
