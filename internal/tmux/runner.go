package tmux

import (
	"context"
	"os/exec"
	"strings"
)

// CmdRunner abstracts tmux invocation for testability.
type CmdRunner interface {
	Run(args ...string) (string, error)
}

// ExecRunner implements CmdRunner by shelling out to the tmux binary.
type ExecRunner struct{}

// Run executes tmux with the given arguments and returns its combined output.
func (ExecRunner) Run(args ...string) (string, error) {
	cmd := exec.CommandContext(context.Background(), "tmux", args...)
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}
