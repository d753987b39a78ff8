package launch

import (
	"fmt"
	"strings"
)

// orderByDependencies returns specs in an order where every process comes
// after the processes it depends on. Among processes that are ready at the
// same time, declaration order wins, so a set without dependencies keeps its
// original order. Edges to IDs outside specs are ignored: a dependency on a
// process that was not selected is trivially satisfied.
func orderByDependencies(specs []*ProcessSpec) ([]*ProcessSpec, error) {
	index := make(map[string]int, len(specs))
	for i, s := range specs {
		index[s.ID] = i
	}

	indegree := make([]int, len(specs))
	dependents := make([][]int, len(specs))
	for i, s := range specs {
		for _, dep := range s.DependsOn {
			j, ok := index[dep]
			if !ok {
				continue
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	done := make([]bool, len(specs))
	ordered := make([]*ProcessSpec, 0, len(specs))
	for len(ordered) < len(specs) {
		next := -1
		for i := range specs {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for i, s := range specs {
				if !done[i] {
					stuck = append(stuck, s.ID)
				}
			}
			return nil, fmt.Errorf("%w among processes %s", ErrDependencyCycle, strings.Join(stuck, ", "))
		}
		done[next] = true
		ordered = append(ordered, specs[next])
		for _, d := range dependents[next] {
			indegree[d]--
		}
	}
	return ordered, nil
}
