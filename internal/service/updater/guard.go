package updater

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rosshadden/emcee/internal/logger"
)

// errHostRunning is returned when the host application still holds the archives.
var errHostRunning = errors.New("host application is running")

// ensureHostStopped refuses to touch the archives while a configured host
// process is alive. Replacing archives under a running host corrupts its class path.
func (r *runner) ensureHostStopped(ctx context.Context) error {
	if len(r.hostProcesses) == 0 {
		return nil
	}

	logger.Debug(ctx, "Checking for running host processes")

	processList, err := r.processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	hostNames := sliceToSet(r.hostProcesses)
	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if _, found := hostNames[process.Executable()]; found {
			return fmt.Errorf("%w: %s (pid %d)", errHostRunning, process.Executable(), process.Pid())
		}
	}

	return nil
}

// sliceToSet converts a slice to a set for quick lookups.
func sliceToSet[T comparable](elements []T) map[T]struct{} {
	result := make(map[T]struct{}, len(elements))
	for _, value := range elements {
		result[value] = struct{}{}
	}

	return result
}
