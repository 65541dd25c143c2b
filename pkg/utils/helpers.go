package utils

import (
	"os"
	"strconv"
)

// DefaultSemaphoreLimit is the default concurrency for batch operations
const DefaultSemaphoreLimit = 10

// GetSemaphoreLimit returns the semaphore limit from environment variable or default
func GetSemaphoreLimit() int {
	val := os.Getenv("SEMAPHORE_LIMIT")
	if val == "" {
		return DefaultSemaphoreLimit
	}
	limit, err := strconv.Atoi(val)
	if err != nil {
		return DefaultSemaphoreLimit
	}
	return limit
}
