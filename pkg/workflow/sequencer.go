package workflow

import (
	"sort"

	"github.com/dukex/pathway/pkg/models"
)

// FlattenTasks returns the canonical linear task sequence: stages sorted by order
// ascending (stable, so equal orders keep their array position), each stage's tasks in
// stored order. The sequence is positional and ignores dependencies.
func FlattenTasks(w *models.Workflow) []*models.Task {
	if w == nil {
		return nil
	}

	stages := make([]*models.Stage, 0, len(w.Stages))
	for _, stage := range w.Stages {
		if stage != nil {
			stages = append(stages, stage)
		}
	}

	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].Order < stages[j].Order
	})

	var tasks []*models.Task

	for _, stage := range stages {
		for _, task := range stage.Tasks {
			if task != nil {
				tasks = append(tasks, task)
			}
		}
	}

	return tasks
}

// NextTask is the legacy "what comes next" lookup; see NextPositionalTask.
func NextTask(w *models.Workflow, currentTaskID string) *models.Task {
	return NextPositionalTask(w, currentTaskID)
}

// NextPositionalTask returns the task that follows currentTaskID in the flattened
// sequence, or nil when the current task is last, absent, or the workflow is terminal.
// The returned task may still be dependency-locked.
func NextPositionalTask(w *models.Workflow, currentTaskID string) *models.Task {
	if w == nil || w.IsTerminal() {
		return nil
	}

	tasks := FlattenTasks(w)

	position := indexOf(tasks, currentTaskID)
	if position < 0 || position == len(tasks)-1 {
		return nil
	}

	return tasks[position+1]
}

// NextAvailableTask returns the first task after currentTaskID in the flattened sequence
// that is not done and is dependency-available.
func NextAvailableTask(w *models.Workflow, currentTaskID string) *models.Task {
	if w == nil || w.IsTerminal() {
		return nil
	}

	tasks := FlattenTasks(w)

	position := indexOf(tasks, currentTaskID)
	if position < 0 {
		return nil
	}

	for _, task := range tasks[position+1:] {
		if !task.IsDone() && IsAvailable(w, task.ID) {
			return task
		}
	}

	return nil
}

func indexOf(tasks []*models.Task, taskID string) int {
	for i, task := range tasks {
		if task.ID == taskID {
			return i
		}
	}

	return -1
}
