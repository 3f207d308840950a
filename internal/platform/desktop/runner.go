package desktop

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/Asami3315/Emergency-Ringer/internal/device"
)

// Runner runs external commands.
type Runner interface {
	// Output runs the command and returns its standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Run runs the command until it exits or ctx ends.
	Run(ctx context.Context, name string, args ...string) error
	// LookPath reports whether the command can be found.
	LookPath(name string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Output implements Runner.
func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, commandError(name, err, stderr.String())
	}

	return out, nil
}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return commandError(name, err, stderr.String())
	}

	return nil
}

// LookPath implements Runner.
func (ExecRunner) LookPath(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return commandError(name, err, "")
	}

	return nil
}

func commandError(name string, err error, stderr string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%s: %w", name, device.ErrUnavailable)
	}

	if msg := strings.TrimSpace(stderr); msg != "" {
		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}

	return fmt.Errorf("%s: %w", name, err)
}

// ProcessLister lists running processes.
type ProcessLister func() ([]ps.Process, error)

// soundServers are the executables that serve the pactl protocol.
var soundServers = []string{"pipewire-pulse", "pipewire", "pulseaudio"}

// soundServerRunning reports whether a PulseAudio compatible server runs.
func soundServerRunning(list ProcessLister) (bool, error) {
	processes, err := list()
	if err != nil {
		return false, fmt.Errorf("failed to list processes: %w", err)
	}

	for _, process := range processes {
		for _, name := range soundServers {
			if process.Executable() == name {
				return true, nil
			}
		}
	}

	return false, nil
}
