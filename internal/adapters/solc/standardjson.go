package solc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/xet-labs/xet-composer/internal/domain"
)

// Standard JSON I/O schema for `solc --standard-json`. Only the fields the
// pipeline consumes are modeled; everything else is ignored on decode.

type stdInput struct {
	Language string               `json:"language"`
	Sources  map[string]stdSource `json:"sources"`
	Settings stdSettings          `json:"settings"`
}

type stdSource struct {
	Content string `json:"content"`
}

type stdSettings struct {
	Optimizer       stdOptimizer                   `json:"optimizer"`
	OutputSelection map[string]map[string][]string `json:"outputSelection"`
}

type stdOptimizer struct {
	Enabled bool `json:"enabled"`
	Runs    int  `json:"runs,omitempty"`
}

type stdDiagnostic struct {
	Severity         string `json:"severity"`
	Type             string `json:"type"`
	Message          string `json:"message"`
	FormattedMessage string `json:"formattedMessage"`
}

type stdContract struct {
	ABI json.RawMessage `json:"abi"`
	EVM struct {
		Bytecode struct {
			Object string `json:"object"`
		} `json:"bytecode"`
	} `json:"evm"`
}

type stdOutput struct {
	Errors    []stdDiagnostic                   `json:"errors"`
	Contracts map[string]map[string]stdContract `json:"contracts"`
}

func buildInput(src *domain.RenderedSource, optimize bool, runs int) ([]byte, error) {
	input := stdInput{
		Language: "Solidity",
		Sources: map[string]stdSource{
			sourceUnit(src): {Content: src.Source},
		},
		Settings: stdSettings{
			Optimizer: stdOptimizer{Enabled: optimize, Runs: runs},
			OutputSelection: map[string]map[string][]string{
				"*": {"*": {"abi", "evm.bytecode.object"}},
			},
		},
	}
	return json.Marshal(input)
}

func sourceUnit(src *domain.RenderedSource) string {
	return src.ContractName + ".sol"
}

// parseOutput converts solc standard JSON output into a CompilationArtifact.
// Diagnostics are preserved in emission order; severity mapping is explicit
// so an unknown severity never silently downgrades an error.
func parseOutput(raw []byte, src *domain.RenderedSource) (*domain.CompilationArtifact, error) {
	var out stdOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse solc output: %w", err)
	}

	artifact := &domain.CompilationArtifact{ContractName: src.ContractName}
	for _, d := range out.Errors {
		artifact.Diagnostics = append(artifact.Diagnostics, domain.Diagnostic{
			Severity:  mapSeverity(d.Severity),
			Type:      d.Type,
			Message:   d.Message,
			Formatted: d.FormattedMessage,
		})
	}

	contract, ok := out.Contracts[sourceUnit(src)][src.ContractName]
	if !ok {
		// An errored compile legitimately emits no contract output.
		return artifact, nil
	}

	artifact.RawABI = contract.ABI
	if len(contract.ABI) > 0 {
		parsed, err := abi.JSON(bytes.NewReader(contract.ABI))
		if err != nil {
			return nil, fmt.Errorf("parse contract ABI: %w", err)
		}
		artifact.ABI = parsed
	}
	artifact.Bytecode = common.FromHex(contract.EVM.Bytecode.Object)
	return artifact, nil
}

func mapSeverity(s string) domain.Severity {
	switch s {
	case "warning":
		return domain.SeverityWarning
	case "info":
		return domain.SeverityInfo
	default:
		// "error" and anything unrecognized rank as errors.
		return domain.SeverityError
	}
}
