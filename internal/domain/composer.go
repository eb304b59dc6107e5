package domain

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ParamKind enumerates the closed set of parameter kinds a template may
// declare. Rendering and constructor encoding only understand these kinds;
// free-form string parameters are deliberately not representable.
type ParamKind string

const (
	KindAddress   ParamKind = "address"
	KindUint      ParamKind = "uint256"
	KindDuration  ParamKind = "duration"  // seconds
	KindTimestamp ParamKind = "timestamp" // unix seconds
)

// IsInteger reports whether values of this kind encode as decimal literals.
func (k ParamKind) IsInteger() bool {
	return k == KindUint || k == KindDuration || k == KindTimestamp
}

// RuleKind enumerates the cross-field constraint rules a template manifest
// may declare.
type RuleKind string

const (
	// RuleLTE requires fields[0] <= fields[1].
	RuleLTE RuleKind = "lte"
	// RulePositive requires fields[0] > 0.
	RulePositive RuleKind = "positive"
	// RuleNotBeforeNow requires fields[0] >= the wall clock at validation time.
	RuleNotBeforeNow RuleKind = "not_before_now"
)

// ConstraintRule is a declared cross-field constraint. The validator reads
// the wall clock exactly once per Validate call, so RuleNotBeforeNow cannot
// race against later pipeline stages.
type ConstraintRule struct {
	Kind   RuleKind `yaml:"kind"`
	Fields []string `yaml:"fields"`
}

// ParamSpec describes a single declared template parameter.
type ParamSpec struct {
	Name        string    `yaml:"name"`
	Kind        ParamKind `yaml:"kind"`
	Description string    `yaml:"description,omitempty"`
}

// TemplateDescriptor identifies a contract template: its ordered parameter
// declarations, constraint rules, source text and unresolved import paths.
// Descriptors are immutable once loaded.
type TemplateDescriptor struct {
	ID           string
	ContractName string
	Description  string
	Params       []ParamSpec
	Rules        []ConstraintRule
	Source       string
	Imports      []string
}

// Param returns the declared parameter with the given name.
func (d *TemplateDescriptor) Param(name string) (ParamSpec, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// ParamNames returns the declared parameter names in declaration order.
func (d *TemplateDescriptor) ParamNames() []string {
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}
	return names
}

// ParamValue is a validated, typed parameter value. Exactly one of Address
// or Uint is set, according to Kind.
type ParamValue struct {
	Kind    ParamKind
	Address common.Address
	Uint    *big.Int
}

// ParameterSet maps parameter names to validated values. A set is bound to
// the descriptor it was validated against and is never partially valid:
// the validator either returns a complete set or none at all. Values stay
// keyed by name; declaration order is applied only at the final ABI encode.
type ParameterSet struct {
	TemplateID string
	values     map[string]ParamValue
}

// NewParameterSet creates an empty set bound to a template.
func NewParameterSet(templateID string) *ParameterSet {
	return &ParameterSet{
		TemplateID: templateID,
		values:     make(map[string]ParamValue),
	}
}

// Set stores a validated value.
func (s *ParameterSet) Set(name string, v ParamValue) {
	s.values[name] = v
}

// Get returns the value for a parameter name.
func (s *ParameterSet) Get(name string) (ParamValue, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Len returns the number of values in the set.
func (s *ParameterSet) Len() int {
	return len(s.values)
}

// RenderedSource is the contract source produced by substitution, plus the
// import paths it references (unresolved; resolution against vendored
// library roots is the compiler adapter's concern). It is consumed exactly
// once by compilation.
type RenderedSource struct {
	TemplateID   string
	ContractName string
	Source       string
	Imports      []string
}

// Severity ranks a compiler diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is a single compiler message, preserved in emission order.
type Diagnostic struct {
	Severity  Severity
	Type      string
	Message   string
	Formatted string
}

// CompilationArtifact is the structured output of a compile: creation
// bytecode, the parsed ABI plus its raw JSON form, and the full ordered
// diagnostics list.
type CompilationArtifact struct {
	ContractName string
	Bytecode     []byte
	ABI          abi.ABI
	RawABI       json.RawMessage
	Diagnostics  []Diagnostic
}

// HasErrors reports whether any diagnostic is at error severity.
func (a *CompilationArtifact) HasErrors() bool {
	for _, d := range a.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Deployable reports whether the artifact may back a deployment request.
// An artifact with error diagnostics is never deployable, even when a
// partial compile emitted bytecode.
func (a *CompilationArtifact) Deployable() bool {
	return len(a.Bytecode) > 0 && !a.HasErrors()
}

// DeploymentRequest carries everything the executor needs to deploy a
// compiled contract. Constructor arguments stay keyed by name inside the
// parameter set; the executor orders them by the descriptor's declaration
// order at the final encode step.
type DeploymentRequest struct {
	Artifact   *CompilationArtifact
	Descriptor *TemplateDescriptor
	Params     *ParameterSet
	Network    *Network
}

// DeploymentResult is the terminal result of a successful deployment.
type DeploymentResult struct {
	Address common.Address
	TxHash  common.Hash
	ABI     json.RawMessage
	Message string
}

// Network identifies the target chain for a deployment.
type Network struct {
	Name        string `json:"name" mapstructure:"name"`
	ChainID     uint64 `json:"chainId" mapstructure:"chain_id"`
	RPCURL      string `json:"rpcUrl" mapstructure:"rpc_url"`
	ExplorerURL string `json:"explorerUrl,omitempty" mapstructure:"explorer_url"`
}

// DeploymentRecord is the artifact snapshot persisted after a successful
// deployment.
type DeploymentRecord struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
	Address      string          `json:"address"`
	TxHash       string          `json:"txHash"`
	Network      string          `json:"network"`
	ChainID      uint64          `json:"chainId"`
	DeployedAt   int64           `json:"deployedAt"`
}
