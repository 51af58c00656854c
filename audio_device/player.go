package audio_device

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes an external program and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec, folding stderr into the error.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, detail)
	}

	return stdout.Bytes(), nil
}

type paplayImpl struct {
	command string
	device  string
	run     CommandRunner
}

type PlayerConfig struct {
	// Command defaults to paplay.
	Command string
	// Device is the PulseAudio sink name; empty plays on the default sink.
	Device string
	Runner CommandRunner
}

func NewPlayer(cfg *PlayerConfig) (Player, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	command := cfg.Command
	if command == "" {
		command = "paplay"
	}

	run := cfg.Runner
	if run == nil {
		run = ExecRunner
	}

	return &paplayImpl{
		command: command,
		device:  cfg.Device,
		run:     run,
	}, nil
}

func (p *paplayImpl) Play(ctx context.Context, path string) error {
	args := make([]string, 0, 2)
	if p.device != "" {
		args = append(args, "--device="+p.device)
	}
	args = append(args, path)

	_, err := p.run(ctx, p.command, args...)

	return err
}
