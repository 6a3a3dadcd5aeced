package scheduler

import (
	"github.com/RLTree/ArcadiaCoach-sub000/internal/domain"
)

func testItem(categoryKey, moduleID string, minutes int, prereqs ...string) domain.WorkItem {
	return newItem(categoryKey, moduleID, domain.KindLesson, 0, moduleID, minutes, prereqs)
}

func withPriorities(items []domain.WorkItem) []domain.WorkItem {
	for i := range items {
		items[i].Priority = i
	}
	return items
}

func itemsByKey(items []domain.WorkItem) map[string]domain.WorkItem {
	out := make(map[string]domain.WorkItem, len(items))
	for _, it := range items {
		out[it.Key] = it
	}
	return out
}

func itemsByID(items []domain.WorkItem) map[string]domain.WorkItem {
	out := make(map[string]domain.WorkItem, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out
}

func testConfig() Config {
	return DefaultConfig()
}
