package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/redirector-packager/internal/logger"
)

// MarkerFilename marks that a build is writing into the output folder right now.
const MarkerFilename = ".redirector-build-marker"

// ErrBuildRunning indicates another live process owns the output folder.
var ErrBuildRunning = errors.New("another build is running")

// processFinder looks up a process by PID; it returns nil when no such process exists.
type processFinder func(pid int) (ps.Process, error)

// marker is the on-disk lock of a build run.
type marker struct {
	path string
	find processFinder
}

func newMarker(folder string) *marker {
	return &marker{
		path: filepath.Join(folder, MarkerFilename),
		find: ps.FindProcess,
	}
}

// Acquire writes the marker, removing a stale one left by a process that no longer exists.
func (m *marker) Acquire(ctx context.Context) error {
	logger.Debug(ctx, "Checking for the presence of a build marker")

	running, err := m.isHeldByLiveProcess(ctx)
	if err != nil {
		return err
	}

	if running {
		return fmt.Errorf("%w: marker %s", ErrBuildRunning, m.path)
	}

	if err = os.WriteFile(m.path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return fmt.Errorf("write build marker: %w", err)
	}

	return nil
}

// Release removes the marker.
func (m *marker) Release(ctx context.Context) {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Unable to remove build marker", "path", m.path, "error", err)
	}
}

func (m *marker) isHeldByLiveProcess(ctx context.Context) (bool, error) {
	contents, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("read build marker: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		logger.InfoKV(ctx, "The build marker is unreadable, removing it", "path", m.path)
		return false, nil
	}

	if pid == os.Getpid() {
		return false, nil
	}

	process, err := m.find(pid)
	if err != nil {
		return false, fmt.Errorf("look up process %d: %w", pid, err)
	}

	if process != nil {
		return true, nil
	}

	logger.InfoKV(ctx, "The build marker is stale, removing it", "pid", pid)

	return false, nil
}
