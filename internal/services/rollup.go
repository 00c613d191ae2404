package services

import (
	"github.com/BradenHooton/elecpower/internal/models"
)

// rollupStatus derives the project status after one of its tasks was set to
// changed. siblings are all tasks of the project, reloaded after the update.
// The second result is false when the project keeps its current status.
func rollupStatus(current, changed models.ProjectStatus, siblings []*models.Task) (models.ProjectStatus, bool) {
	if changed == models.ProjectStatusInProgress && current == models.ProjectStatusNotStarted {
		return models.ProjectStatusInProgress, true
	}
	if changed == models.ProjectStatusCompleted && allTasksIn(siblings, models.ProjectStatusCompleted) {
		return models.ProjectStatusCompleted, current != models.ProjectStatusCompleted
	}
	if changed == models.ProjectStatusNotStarted && allTasksIn(siblings, models.ProjectStatusNotStarted) {
		return models.ProjectStatusNotStarted, current != models.ProjectStatusNotStarted
	}
	return current, false
}

func allTasksIn(tasks []*models.Task, status models.ProjectStatus) bool {
	for _, t := range tasks {
		if t.Status != status {
			return false
		}
	}
	return true
}
