package workflow

import (
	"fmt"
	"sort"

	"github.com/dukex/pathway/pkg/models"
)

// DependencyGraph maps a task id to the ids it depends on.
type DependencyGraph map[string][]string

// WorkflowGraph builds the dependency graph of a workflow instance.
func WorkflowGraph(w *models.Workflow) DependencyGraph {
	graph := DependencyGraph{}

	for _, task := range w.Tasks() {
		graph[task.ID] = append([]string(nil), task.DependentOn...)
	}

	return graph
}

// TemplateGraph builds the dependency graph of a template.
func TemplateGraph(tpl *models.WorkflowTemplate) DependencyGraph {
	graph := DependencyGraph{}

	for _, stage := range tpl.Stages {
		if stage == nil {
			continue
		}

		for _, task := range stage.Tasks {
			if task != nil {
				graph[task.ID] = append([]string(nil), task.DependentOn...)
			}
		}
	}

	return graph
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// The path starts and ends with the same task id. Edges to unknown ids are ignored.
func DetectCycle(graph DependencyGraph) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(graph))
	parent := make(map[string]string, len(graph))

	var visit func(node string) []string
	visit = func(node string) []string {
		color[node] = gray

		for _, next := range graph[node] {
			if _, known := graph[next]; !known {
				continue
			}

			if color[next] == gray {
				cycle := []string{next, node}
				for current := node; current != next; {
					current = parent[current]
					cycle = append(cycle, current)
				}

				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}

				return cycle
			}

			if color[next] == white {
				parent[next] = node
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}

		color[node] = black

		return nil
	}

	ids := make([]string, 0, len(graph))
	for id := range graph {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	for _, id := range ids {
		if color[id] == white {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}

	return nil
}

// validateGraph reports self-dependencies, unknown dependency ids and cycles. tasks lists
// every task id in declaration order.
func validateGraph(result *ValidationError, tasks []string, graph DependencyGraph) {
	for _, taskID := range tasks {
		for _, dependencyID := range graph[taskID] {
			field := fmt.Sprintf("tasks[%s].dependent_on", taskID)

			switch {
			case dependencyID == taskID:
				result.add(field, ErrSelfDependency, fmt.Sprintf("task %q depends on itself", taskID))
			case !graph.has(dependencyID):
				result.add(field, ErrUnknownDependency, fmt.Sprintf("task %q depends on unknown task %q", taskID, dependencyID))
			}
		}
	}

	withoutSelf := DependencyGraph{}

	for id, dependencies := range graph {
		for _, dependencyID := range dependencies {
			if dependencyID != id {
				withoutSelf[id] = append(withoutSelf[id], dependencyID)
			}
		}

		if _, ok := withoutSelf[id]; !ok {
			withoutSelf[id] = nil
		}
	}

	if cycle := DetectCycle(withoutSelf); cycle != nil {
		result.add("dependent_on", ErrDependencyCycle, fmt.Sprintf("dependency cycle: %v", cycle))
	}
}

func (g DependencyGraph) has(id string) bool {
	_, ok := g[id]

	return ok
}
