package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner invokes the external analyzer against a downloaded video and
// blocks until the process exits. The analyzer's internals are opaque; its
// contract is the argument order and the segment directories it leaves
// under outputDir.
type Runner interface {
	Run(ctx context.Context, inputFile, outputDir, parameter string) error
}

// ProcessRunner executes the analyzer binary at Path.
type ProcessRunner struct {
	Path string
}

func NewProcessRunner(path string) *ProcessRunner {
	return &ProcessRunner{Path: path}
}

func (r *ProcessRunner) Run(ctx context.Context, inputFile, outputDir, parameter string) error {
	cmd := exec.CommandContext(ctx, r.Path, inputFile, outputDir, parameter)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("analyzer failed: %v\nstderr: %s", err, stderr.String())
	}
	return nil
}
