package signer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"github.com/oshokin/redirector-packager/internal/logger"
)

var (
	// ErrSignerFailed is returned when the signer cannot be started or exits with a non-zero status.
	ErrSignerFailed = errors.New("signer failed")
	// errEmptyCommand is returned when the configured command line has no program.
	errEmptyCommand = errors.New("signer command is empty")
)

// Signer produces a signed package from an archive.
type Signer interface {
	Sign(ctx context.Context, archivePath, signedPath, certificatePath string) error
}

// CommandSigner invokes an external program.
type CommandSigner struct {
	// command is the configured command line, split with shell quoting rules.
	command string
	// dir is the working directory of the program.
	dir string
}

// NewCommandSigner creates a signer running command inside dir.
func NewCommandSigner(command, dir string) *CommandSigner {
	return &CommandSigner{
		command: command,
		dir:     dir,
	}
}

// Sign runs the command with the three paths appended and waits for it to finish.
func (s *CommandSigner) Sign(ctx context.Context, archivePath, signedPath, certificatePath string) error {
	ctx = logger.WithName(ctx, "signer")

	args, err := shlex.Split(s.command)
	if err != nil {
		return fmt.Errorf("%w: parse command %q: %w", ErrSignerFailed, s.command, err)
	}

	if len(args) == 0 {
		return fmt.Errorf("%w: %w", ErrSignerFailed, errEmptyCommand)
	}

	// The program runs inside dir, so relative paths would point elsewhere.
	positional := make([]string, 0, 3)

	for _, p := range []string{archivePath, signedPath, certificatePath} {
		absolute, absErr := filepath.Abs(p)
		if absErr != nil {
			return fmt.Errorf("%w: resolve %s: %w", ErrSignerFailed, p, absErr)
		}

		positional = append(positional, absolute)
	}

	//nolint:gosec // The command comes from the packager settings, not from untrusted input.
	cmd := exec.CommandContext(ctx, args[0], append(args[1:], positional...)...)
	cmd.Dir = s.dir

	var output bytes.Buffer

	cmd.Stdout = &output
	cmd.Stderr = &output

	logger.InfoKV(ctx, "Running signer", "command", args[0], "args", strings.Join(cmd.Args[1:], " "))

	runErr := cmd.Run()

	logOutput(ctx, output.Bytes())

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return fmt.Errorf("%w: exit status %d", ErrSignerFailed, exitErr.ExitCode())
		}

		return fmt.Errorf("%w: %w", ErrSignerFailed, runErr)
	}

	logger.InfoKV(ctx, "Signed package created", "path", signedPath)

	return nil
}

// logOutput forwards the signer's output line by line.
func logOutput(ctx context.Context, output []byte) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			logger.DebugKV(ctx, "Signer output", "line", line)
		}
	}
}
