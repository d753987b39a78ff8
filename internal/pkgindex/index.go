// Package pkgindex locates installed packages under a list of install
// prefixes laid out the ament way: shared data in <prefix>/share/<pkg> and
// executables in <prefix>/lib/<pkg>.
package pkgindex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPackageNotFound is returned when no prefix contains the package.
var ErrPackageNotFound = errors.New("package not found")

// Index searches prefixes in order; the first match wins.
type Index struct {
	Prefixes []string
}

// New builds an index, dropping empty prefixes.
func New(prefixes ...string) *Index {
	idx := &Index{}
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			idx.Prefixes = append(idx.Prefixes, p)
		}
	}
	return idx
}

// FromPathList builds an index from an os.PathListSeparator-separated list
// such as the value of AMENT_PREFIX_PATH.
func FromPathList(list string) *Index {
	return New(filepath.SplitList(list)...)
}

// Share returns the share directory of pkg.
func (i *Index) Share(pkg string) (string, error) {
	if pkg == "" {
		return "", fmt.Errorf("%w: empty package name", ErrPackageNotFound)
	}
	for _, prefix := range i.Prefixes {
		dir := filepath.Join(prefix, "share", pkg)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w: %q (searched %d prefixes)", ErrPackageNotFound, pkg, len(i.Prefixes))
}

// Executable returns the path of an executable installed by pkg.
func (i *Index) Executable(pkg, name string) (string, error) {
	for _, prefix := range i.Prefixes {
		path := filepath.Join(prefix, "lib", pkg, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: executable %q in package %q", ErrPackageNotFound, name, pkg)
}
