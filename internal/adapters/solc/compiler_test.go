package solc

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xet-labs/xet-composer/internal/domain"
	"github.com/xet-labs/xet-composer/internal/domain/config"
)

const testABI = `[{"inputs":[{"name":"token_","type":"address"}],"stateMutability":"nonpayable","type":"constructor"},` +
	`{"inputs":[],"name":"release","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

func renderedVesting() *domain.RenderedSource {
	return &domain.RenderedSource{
		TemplateID:   "token-vesting",
		ContractName: "TokenVesting",
		Source:       "contract TokenVesting {}",
	}
}

func successOutput(t *testing.T) []byte {
	t.Helper()
	out := map[string]any{
		"errors": []map[string]any{
			{"severity": "warning", "type": "Warning", "message": "unused variable"},
		},
		"contracts": map[string]any{
			"TokenVesting.sol": map[string]any{
				"TokenVesting": map[string]any{
					"abi": json.RawMessage(testABI),
					"evm": map[string]any{"bytecode": map[string]any{"object": "60806040deadbeef"}},
				},
			},
		},
	}
	data, err := json.Marshal(out)
	require.NoError(t, err)
	return data
}

func TestBuildInput(t *testing.T) {
	data, err := buildInput(renderedVesting(), true, 200)
	require.NoError(t, err)

	var input stdInput
	require.NoError(t, json.Unmarshal(data, &input))
	assert.Equal(t, "Solidity", input.Language)
	assert.Contains(t, input.Sources, "TokenVesting.sol")
	assert.True(t, input.Settings.Optimizer.Enabled)
	assert.Equal(t, 200, input.Settings.Optimizer.Runs)
	assert.Equal(t, []string{"abi", "evm.bytecode.object"}, input.Settings.OutputSelection["*"]["*"])
}

func TestParseOutputSuccess(t *testing.T) {
	artifact, err := parseOutput(successOutput(t), renderedVesting())
	require.NoError(t, err)

	assert.Equal(t, "TokenVesting", artifact.ContractName)
	assert.NotEmpty(t, artifact.Bytecode)
	assert.False(t, artifact.HasErrors())
	assert.True(t, artifact.Deployable())
	require.Len(t, artifact.Diagnostics, 1)
	assert.Equal(t, domain.SeverityWarning, artifact.Diagnostics[0].Severity)
	require.NotNil(t, artifact.ABI.Constructor.Inputs)
	assert.Len(t, artifact.ABI.Constructor.Inputs, 1)
	_, hasRelease := artifact.ABI.Methods["release"]
	assert.True(t, hasRelease)
}

func TestParseOutputErrorSeverityBlocksDeployment(t *testing.T) {
	out := []byte(`{
		"errors": [
			{"severity": "warning", "type": "Warning", "message": "first"},
			{"severity": "error", "type": "TypeError", "message": "bad type"}
		],
		"contracts": {
			"TokenVesting.sol": {
				"TokenVesting": {
					"abi": [],
					"evm": {"bytecode": {"object": "6080"}}
				}
			}
		}
	}`)

	artifact, err := parseOutput(out, renderedVesting())
	require.NoError(t, err)
	// Bytecode from a partial compile is present but the artifact is
	// ineligible, and diagnostic order is preserved.
	assert.NotEmpty(t, artifact.Bytecode)
	assert.True(t, artifact.HasErrors())
	assert.False(t, artifact.Deployable())
	require.Len(t, artifact.Diagnostics, 2)
	assert.Equal(t, domain.SeverityWarning, artifact.Diagnostics[0].Severity)
	assert.Equal(t, domain.SeverityError, artifact.Diagnostics[1].Severity)
}

func TestMapSeverityUnknownRanksAsError(t *testing.T) {
	assert.Equal(t, domain.SeverityError, mapSeverity("error"))
	assert.Equal(t, domain.SeverityError, mapSeverity("fatal"))
	assert.Equal(t, domain.SeverityWarning, mapSeverity("warning"))
	assert.Equal(t, domain.SeverityInfo, mapSeverity("info"))
}

// writeStubSolc writes an executable script that mimics solc.
func writeStubSolc(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub compiler scripts require a unix shell")
	}
	path := filepath.Join(t.TempDir(), "solc")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func newTestCompiler(solcPath string, timeout time.Duration) *CompilerAdapter {
	return NewCompilerAdapter(&config.RuntimeConfig{
		SolcPath:       solcPath,
		CompileTimeout: timeout,
		SolcOptimize:   true,
		SolcRuns:       200,
	}, slog.Default())
}

func TestCompileWithStubCompiler(t *testing.T) {
	out := successOutput(t)
	outFile := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(outFile, out, 0o644))

	c := newTestCompiler(writeStubSolc(t, "cat "+outFile), 10*time.Second)
	artifact, err := c.Compile(context.Background(), renderedVesting())
	require.NoError(t, err)
	assert.True(t, artifact.Deployable())
}

func TestCompileTimeoutKillsProcess(t *testing.T) {
	c := newTestCompiler(writeStubSolc(t, "sleep 30"), 200*time.Millisecond)

	start := time.Now()
	_, err := c.Compile(context.Background(), renderedVesting())
	elapsed := time.Since(start)

	var cerr *domain.CompileError
	require.ErrorAs(t, err, &cerr)
	assert.True(t, cerr.Timeout)
	assert.Less(t, elapsed, 10*time.Second, "process was not killed at the deadline")
}

func TestCompileCancellation(t *testing.T) {
	c := newTestCompiler(writeStubSolc(t, "sleep 30"), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err := c.Compile(ctx, renderedVesting())
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompileMissingBinary(t *testing.T) {
	c := newTestCompiler(filepath.Join(t.TempDir(), "no-such-solc"), time.Second)

	_, err := c.Compile(context.Background(), renderedVesting())
	var cerr *domain.CompileError
	require.ErrorAs(t, err, &cerr)
	assert.False(t, cerr.Timeout)
	assert.Contains(t, cerr.Detail, "not found")
}
