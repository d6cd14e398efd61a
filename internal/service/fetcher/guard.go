package fetcher

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"

	"github.com/protonfetch/protonfetch/internal/errdefs"
	"github.com/protonfetch/protonfetch/internal/logger"
)

// ensureOnlyInstance refuses to mutate the extraction root while another
// protonfetch process is running. Convergence has no isolation between its
// scan and mutate phases, so concurrent runs are rejected up front.
func ensureOnlyInstance(ctx context.Context) error {
	executable, err := os.Executable()
	if err != nil {
		// Identity unknown; do not block the run over it.
		logger.WarnKV(ctx, "Unable to determine own executable, skipping instance check", "error", err)
		return nil
	}

	ownName := filepath.Base(executable)

	processes, err := ps.Processes()
	if err != nil {
		logger.WarnKV(ctx, "Unable to list processes, skipping instance check", "error", err)
		return nil
	}

	ownPID := os.Getpid()

	for _, process := range processes {
		if process.Pid() == ownPID {
			continue
		}

		if process.Executable() == ownName {
			return errdefs.LinkManagementf(
				"another %s process (pid %d) is running; refusing concurrent link mutation",
				ownName, process.Pid())
		}
	}

	return nil
}
