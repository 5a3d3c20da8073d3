package types

import (
	"strconv"
	"strings"
)

// Task statuses. The wire format accepts either the symbolic name or the
// ordinal value as a string, so both are fixed here.
const (
	TaskStatusUnassigned = "unassigned"
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

var taskStatusOrder = []string{
	TaskStatusUnassigned,
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusCompleted,
}

// ParseTaskStatus resolves a client-supplied status, accepting the symbolic
// name (case-insensitive) or its ordinal as a decimal string.
func ParseTaskStatus(input string) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(input))

	for _, status := range taskStatusOrder {
		if value == status {
			return status, true
		}
	}

	if ordinal, err := strconv.Atoi(value); err == nil {
		if ordinal >= 0 && ordinal < len(taskStatusOrder) {
			return taskStatusOrder[ordinal], true
		}
	}

	return "", false
}
