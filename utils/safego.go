package utils

import (
	"runtime/debug"

	"civiclens-be/logger"
)

// SafeGo runs fn in a goroutine and logs instead of crashing on panic.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Log.Errorf("Panic in goroutine: %v\nStack trace:\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
