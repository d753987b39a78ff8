package app

import (
	"github.com/specialistvlad/launchgrid/internal/config"
	"github.com/specialistvlad/launchgrid/internal/hcl_adapter"
	"github.com/specialistvlad/launchgrid/internal/pkgindex"
)

// HCLLoader is the LoaderFunc for HCL descriptors.
func HCLLoader(packages *pkgindex.Index) config.Loader {
	return hcl_adapter.NewLoader(packages)
}
