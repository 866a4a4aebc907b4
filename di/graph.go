package di

import (
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/kbukum/beankit/errors"
)

// DependencyLevels groups registered beans by declared dependency depth:
// level 0 depends on nothing, level n only on lower levels. Beans within a
// level are ordered by index. Wiring cycles are legal at runtime, but they
// have no level order and are reported as CYCLIC_DEPENDENCY; a dependency
// on an unregistered bean is reported as NOT_FOUND. Like Register, it must
// not be called from inside a factory.
func (m *Manager) DependencyLevels() ([][]Name, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inDegree := make(map[Name]int, len(m.beans))
	dependents := make(map[Name][]Name)
	for _, md := range m.beans {
		inDegree[md.Name] = len(md.Dependencies)
		for _, d := range md.Dependencies {
			if _, ok := m.beans[d.Target]; !ok {
				return nil, apperrors.BeanNotFound(d.Target.String())
			}
			dependents[d.Target] = append(dependents[d.Target], md.Name)
		}
	}

	var queue []Name
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}

	var levels [][]Name
	visited := 0
	for len(queue) > 0 {
		m.sortByIndex(queue)
		levels = append(levels, queue)
		visited += len(queue)

		var next []Name
		for _, name := range queue {
			for _, dep := range dependents[name] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		queue = next
	}

	if visited != len(m.beans) {
		var cyclic []Name
		for name, deg := range inDegree {
			if deg > 0 {
				cyclic = append(cyclic, name)
			}
		}
		m.sortByIndex(cyclic)
		names := make([]string, len(cyclic))
		for i, n := range cyclic {
			names[i] = n.String()
		}
		err := apperrors.New(apperrors.ErrCodeCyclicDependency,
			fmt.Sprintf("dependency cycle among beans %s", strings.Join(names, ", ")))
		return nil, err.WithDetail("beans", names)
	}
	return levels, nil
}

func (m *Manager) sortByIndex(names []Name) {
	slices.SortFunc(names, func(a, b Name) int { return m.beans[a].Index - m.beans[b].Index })
}
