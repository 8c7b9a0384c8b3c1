package org

import (
	"fmt"
	"sort"
	"strings"
)

const indentMarker = "— "

// FlattenDepartments turns a department tree into an ordered display list:
// pre-order, children immediately after their parent, siblings sorted by
// name. Departments whose parent does not exist are promoted to roots rather
// than dropped. A parent cycle fails with an error instead of recursing
// forever.
func FlattenDepartments(departments []Department) ([]DepartmentOption, error) {
	byID := make(map[string]Department, len(departments))
	for _, dep := range departments {
		byID[dep.ID] = dep
	}

	children := make(map[string][]Department)
	var roots []Department
	for _, dep := range departments {
		if dep.ParentID == "" {
			roots = append(roots, dep)
			continue
		}
		if _, ok := byID[dep.ParentID]; !ok {
			roots = append(roots, dep)
			continue
		}
		children[dep.ParentID] = append(children[dep.ParentID], dep)
	}

	sortByName(roots)
	for parentID := range children {
		sortByName(children[parentID])
	}

	visited := make(map[string]bool, len(departments))
	out := make([]DepartmentOption, 0, len(departments))

	var walk func(dep Department, level int) error
	walk = func(dep Department, level int) error {
		if visited[dep.ID] {
			return fmt.Errorf("department hierarchy contains a cycle at %q", dep.Name)
		}
		visited[dep.ID] = true
		out = append(out, DepartmentOption{
			ID:          dep.ID,
			DisplayName: strings.Repeat(indentMarker, level) + dep.Name,
			Level:       level,
		})
		for _, child := range children[dep.ID] {
			if err := walk(child, level+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range roots {
		if err := walk(root, 0); err != nil {
			return nil, err
		}
	}

	// Nodes unreachable from any root form a parent cycle among themselves.
	if len(visited) != len(departments) {
		var stranded []string
		for _, dep := range departments {
			if !visited[dep.ID] {
				stranded = append(stranded, dep.Name)
			}
		}
		sort.Strings(stranded)
		return nil, fmt.Errorf("department hierarchy contains a cycle involving %s", strings.Join(stranded, ", "))
	}

	return out, nil
}

func sortByName(deps []Department) {
	sort.SliceStable(deps, func(i, j int) bool {
		return deps[i].Name < deps[j].Name
	})
}
