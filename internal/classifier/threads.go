package classifier

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// determineThreadCount calculates the number of interpreter threads based on
// settings and system capabilities.
func (c *Classifier) determineThreadCount(configuredThreads int) int {
	systemCPUCount := runtime.NumCPU()

	// If threads are configured to 0, derive an optimal count from the CPU
	if configuredThreads == 0 {
		if optimal := optimalThreadCount(); optimal > 0 {
			return min(optimal, systemCPUCount)
		}
		return systemCPUCount
	}

	// Configured thread count is capped at the system CPU count
	if configuredThreads > systemCPUCount {
		return systemCPUCount
	}

	return configuredThreads
}

// optimalThreadCount prefers physical core count over logical to avoid
// hyperthread contention inside the TFLite kernels. Returns 0 when the CPU
// cannot be identified.
func optimalThreadCount() int {
	if cpuid.CPU.PhysicalCores > 0 {
		return cpuid.CPU.PhysicalCores
	}
	return cpuid.CPU.LogicalCores
}
