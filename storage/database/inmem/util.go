package inmemdb

import (
	"sort"
	"time"
)

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// newestFirst sorts rows by created desc; rows created at the same instant keep the latest insertion first.
func newestFirst[T any](rows []T, created func(T) time.Time) []T {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	sort.SliceStable(rows, func(i, j int) bool { return created(rows[i]).After(created(rows[j])) })
	return rows
}
