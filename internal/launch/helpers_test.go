package launch_test

import (
	"fmt"
	"os"

	"github.com/specialistvlad/launchgrid/internal/launch"
)

// mapReader serves file layers from memory. Paths not in the map fail the
// way a missing file would.
type mapReader map[string]map[string]any

func (m mapReader) ReadParameters(path, process string) (map[string]any, error) {
	params, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out, nil
}

func decl(name, def string) launch.ArgumentDeclaration {
	return launch.ArgumentDeclaration{Name: name, Default: launch.Literal(def)}
}

func proc(id string) *launch.ProcessSpec {
	return &launch.ProcessSpec{
		ID:         id,
		Executable: launch.ExecutableSpec{Package: launch.Literal("pkg_" + id), Name: launch.Literal(id)},
		Output:     launch.OutputScreen,
	}
}

func inline(kv ...any) launch.InlineLayer {
	entries := make(map[string]launch.Value, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key := kv[i].(string)
		switch v := kv[i+1].(type) {
		case launch.Substitution:
			entries[key] = launch.Text(v)
		case string:
			entries[key] = launch.Text(launch.Literal(v))
		default:
			entries[key] = launch.Static(v)
		}
	}
	return launch.InlineLayer{Entries: entries}
}

func requestNames(plan *launch.Plan) []string {
	names := make([]string, 0, len(plan.Requests))
	for _, r := range plan.Requests {
		names = append(names, r.Name)
	}
	return names
}
