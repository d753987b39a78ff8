package hcl_adapter

import (
	"context"
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/launchgrid/internal/config"
	"github.com/specialistvlad/launchgrid/internal/ctxlog"
	"github.com/specialistvlad/launchgrid/internal/fsutil"
	"github.com/specialistvlad/launchgrid/internal/launch"
	"github.com/specialistvlad/launchgrid/internal/pkgindex"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	packages *pkgindex.Index
}

// NewLoader creates a new HCL descriptor loader. The index backs the
// package_share function; nil means an empty index.
func NewLoader(packages *pkgindex.Index) *Loader {
	if packages == nil {
		packages = pkgindex.New()
	}
	return &Loader{packages: packages}
}

// Load parses every .hcl file under paths and assembles one descriptor.
// Files are read in lexical order within each path, and blocks keep their
// order of appearance.
func (l *Loader) Load(ctx context.Context, paths ...string) (*launch.Descriptor, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	t := &translator{
		ctx:   ctx,
		eval:  &evaluator{functions: functions(l.packages)},
		files: parser.Files(),
	}

	var def launch.Definition
	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := t.translateFile(&root, &def); err != nil {
			return nil, fmt.Errorf("in HCL file %s: %w", file, err)
		}
	}

	d, err := launch.NewDescriptor(def)
	if err != nil {
		return nil, fmt.Errorf("invalid launch descriptor: %w", err)
	}
	logger.Debug("HCL loading complete.",
		"arguments", len(def.Arguments),
		"processes", len(def.Processes),
		"lifecycle_groups", len(def.Lifecycle),
		"qos_profiles", len(def.QoS),
	)
	return d, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found. Unlike a search path, every given path must exist.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if !slices.Contains(allFiles, f) {
				allFiles = append(allFiles, f)
			}
		}
	}
	return allFiles, nil
}

func gohclDecode(expr hcl.Expression, target any) hcl.Diagnostics {
	return gohcl.DecodeExpression(expr, nil, target)
}

var _ config.Loader = (*Loader)(nil)
