// Package errors - error hooks for observability integration
package errors

import (
	"sync"
	"sync/atomic"
)

// ErrorHook is a function called for every enhanced error that is built.
// Hooks must be fast and must not create enhanced errors themselves.
type ErrorHook func(ee *EnhancedError)

var (
	errorHooks   []ErrorHook
	errorHooksMu sync.RWMutex

	// hasActiveReporting tracks whether any hook or telemetry reporter is
	// registered, so Build can skip detection work on the hot path.
	hasActiveReporting atomic.Bool
)

// AddErrorHook registers a hook that observes every built error
func AddErrorHook(hook ErrorHook) {
	if hook == nil {
		return
	}
	errorHooksMu.Lock()
	errorHooks = append(errorHooks, hook)
	errorHooksMu.Unlock()
	updateActiveReporting()
}

// ClearErrorHooks removes all registered hooks
func ClearErrorHooks() {
	errorHooksMu.Lock()
	errorHooks = nil
	errorHooksMu.Unlock()
	updateActiveReporting()
}

// runErrorHooks invokes all registered hooks for the given error
func runErrorHooks(ee *EnhancedError) {
	errorHooksMu.RLock()
	hooks := errorHooks
	errorHooksMu.RUnlock()

	for _, hook := range hooks {
		hook(ee)
	}
}

// updateActiveReporting recomputes the fast-path flag after hook or
// reporter changes
func updateActiveReporting() {
	errorHooksMu.RLock()
	hasHooks := len(errorHooks) > 0
	errorHooksMu.RUnlock()

	reporter := GetTelemetryReporter()
	hasReporter := reporter != nil && reporter.IsEnabled()

	hasActiveReporting.Store(hasHooks || hasReporter)
}
