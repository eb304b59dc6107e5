package solc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/xet-labs/xet-composer/internal/domain"
	"github.com/xet-labs/xet-composer/internal/domain/config"
)

const reapGracePeriod = 5 * time.Second

// CompilerAdapter implements the Compiler port by driving a solc binary as
// a subprocess in standard JSON mode. The adapter owns the process
// lifecycle: the process is killed and waited on every exit path,
// including caller cancellation, and each Compile call runs its own
// process so concurrent requests never share one.
type CompilerAdapter struct {
	solcPath    string
	projectRoot string
	importRoots []string
	optimize    bool
	runs        int
	timeout     time.Duration
	log         *slog.Logger
}

// NewCompilerAdapter creates a new compiler adapter from runtime config.
func NewCompilerAdapter(cfg *config.RuntimeConfig, log *slog.Logger) *CompilerAdapter {
	return &CompilerAdapter{
		solcPath:    cfg.SolcPath,
		projectRoot: cfg.ProjectRoot,
		importRoots: cfg.ImportRoots,
		optimize:    cfg.SolcOptimize,
		runs:        cfg.SolcRuns,
		timeout:     cfg.CompileTimeout,
		log:         log.With("component", "CompilerAdapter"),
	}
}

// Compile runs solc on the rendered source and returns the artifact. Any
// error-severity diagnostic turns the result into a CompileError carrying
// the full diagnostics list, even when a partial compile emitted bytecode.
func (c *CompilerAdapter) Compile(ctx context.Context, src *domain.RenderedSource) (*domain.CompilationArtifact, error) {
	if _, err := exec.LookPath(c.solcPath); err != nil {
		return nil, &domain.CompileError{Detail: fmt.Sprintf("solc binary %q not found: %v", c.solcPath, err)}
	}

	input, err := buildInput(src, c.optimize, c.runs)
	if err != nil {
		return nil, &domain.CompileError{Detail: fmt.Sprintf("build compiler input: %v", err)}
	}

	compileCtx := ctx
	var cancel context.CancelFunc
	if c.timeout > 0 {
		compileCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"--standard-json"}
	if len(c.importRoots) > 0 {
		args = append(args, "--base-path", c.projectRoot)
		for _, root := range c.importRoots {
			args = append(args, "--include-path", root)
		}
	}

	cmd := exec.CommandContext(compileCtx, c.solcPath, args...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// CommandContext kills the process on cancellation; WaitDelay bounds
	// how long Run blocks on a child that ignores the kill before the
	// pipes are force-closed and the process reaped.
	cmd.WaitDelay = reapGracePeriod

	start := time.Now()
	c.log.Debug("running solc", "path", c.solcPath, "contract", src.ContractName)
	runErr := cmd.Run()
	duration := time.Since(start)

	switch {
	case errors.Is(compileCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		c.log.Error("solc timed out", "duration", duration)
		return nil, &domain.CompileError{Timeout: true}
	case ctx.Err() != nil:
		return nil, ctx.Err()
	}

	if runErr != nil && stdout.Len() == 0 {
		// solc failed before producing structured output (bad binary,
		// malformed invocation). Standard JSON failures with output are
		// handled below via diagnostics.
		c.log.Error("solc failed", "error", runErr, "stderr", stderr.String())
		return nil, &domain.CompileError{Detail: fmt.Sprintf("solc: %v: %s", runErr, stderr.String())}
	}

	artifact, err := parseOutput(stdout.Bytes(), src)
	if err != nil {
		return nil, &domain.CompileError{Detail: err.Error()}
	}

	if artifact.HasErrors() {
		c.log.Debug("compilation failed", "diagnostics", len(artifact.Diagnostics), "duration", duration)
		return nil, &domain.CompileError{Diagnostics: artifact.Diagnostics}
	}
	if len(artifact.Bytecode) == 0 {
		return nil, &domain.CompileError{Detail: "compiler emitted no bytecode", Diagnostics: artifact.Diagnostics}
	}

	c.log.Debug("compilation succeeded",
		"contract", src.ContractName,
		"bytecode_bytes", len(artifact.Bytecode),
		"warnings", len(artifact.Diagnostics),
		"duration", duration)
	return artifact, nil
}
