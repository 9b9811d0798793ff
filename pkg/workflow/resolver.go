// Package workflow implements the task dependency engine: availability, sequencing,
// dependency graph validation and template instantiation.
package workflow

import "github.com/dukex/pathway/pkg/models"

// IsAvailable reports whether taskID is unlocked. A task with no dependencies is
// available; otherwise every dependency must resolve to a done task in the same
// workflow. Missing tasks and missing dependency ids fail closed. Nothing is available
// once the workflow is terminal.
//
// The check is a single pass over the direct dependencies, so cycles cannot loop here.
func IsAvailable(w *models.Workflow, taskID string) bool {
	if w == nil || w.IsTerminal() {
		return false
	}

	task, _ := w.FindTask(taskID)
	if task == nil {
		return false
	}

	return len(BlockingDependencies(w, taskID)) == 0
}

// BlockingDependencies returns the dependency ids of taskID that are not satisfied,
// in declaration order. Unknown dependency ids are reported as blocking.
func BlockingDependencies(w *models.Workflow, taskID string) []string {
	if w == nil {
		return nil
	}

	task, _ := w.FindTask(taskID)
	if task == nil {
		return nil
	}

	var blocking []string

	for _, dependencyID := range task.DependentOn {
		dependency, _ := w.FindTask(dependencyID)
		if dependency == nil || !dependency.IsDone() {
			blocking = append(blocking, dependencyID)
		}
	}

	return blocking
}

// AvailableTasks returns the unlocked tasks that are not done yet, in flattened order.
func AvailableTasks(w *models.Workflow) []*models.Task {
	if w == nil || w.IsTerminal() {
		return nil
	}

	var available []*models.Task

	for _, task := range FlattenTasks(w) {
		if !task.IsDone() && IsAvailable(w, task.ID) {
			available = append(available, task)
		}
	}

	return available
}

// AllTasksDone reports whether every task in every stage is done. Callers use it to
// decide whether completing the workflow is actionable; nothing transitions on its own.
func AllTasksDone(w *models.Workflow) bool {
	if w == nil {
		return false
	}

	for _, task := range w.Tasks() {
		if !task.IsDone() {
			return false
		}
	}

	return true
}

// Progress returns the number of done tasks and the total number of tasks.
func Progress(w *models.Workflow) (done, total int) {
	if w == nil {
		return 0, 0
	}

	for _, task := range w.Tasks() {
		total++

		if task.IsDone() {
			done++
		}
	}

	return done, total
}
