package d2png

import "runtime"

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent compiler processes; each d2 run is
	// CPU-heavy on its own.
	MaxPoolSize = 8
)

// ResolvePoolSize determines the worker count.
// Priority: explicit workers > min(GOMAXPROCS, MaxPoolSize).
// Exported for use by CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0)

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
