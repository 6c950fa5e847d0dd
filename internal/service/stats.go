package service

import (
	"math"
	"time"

	"taskhub/internal/api"
	"taskhub/internal/models"
)

// summarize counts tasks by status, priority, and category. CompletionRate
// is a percentage rounded to one decimal place.
func summarize(tasks []models.Task, now time.Time) api.TaskStats {
	stats := api.TaskStats{
		Total:      len(tasks),
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
		ByCategory: map[string]int{},
	}
	for i := range tasks {
		task := &tasks[i]
		stats.ByStatus[string(task.Status)]++
		stats.ByPriority[string(task.Priority)]++
		stats.ByCategory[string(task.Category)]++
		if task.IsCompleted() {
			stats.Completed++
		}
		if task.IsOverdue(now) {
			stats.Overdue++
		}
	}
	if stats.Total > 0 {
		rate := float64(stats.Completed) / float64(stats.Total) * 100
		stats.CompletionRate = math.Round(rate*10) / 10
	}
	return stats
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
