package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for domain operations
var (
	// ErrTemplateNotFound is returned when a template id resolves to nothing
	ErrTemplateNotFound = errors.New("template not found")

	// ErrNotDeployable is returned when a deployment request is built from
	// an artifact that carries error diagnostics
	ErrNotDeployable = errors.New("artifact is not deployable")

	// ErrNoSigner is returned when a deployment is attempted without a
	// configured signer
	ErrNoSigner = errors.New("no signer configured")
)

// ValidationError reports a single violated parameter constraint. Any one
// violation rejects the whole parameter set; validation never reaches
// rendering. Field is the offending parameter, Rule the violated rule in
// its declared form (cross-field rules name every involved field).
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Field, e.Rule)
}

// RenderError reports a failed template substitution: a placeholder the
// parameter set cannot satisfy, or source the renderer refuses to emit.
type RenderError struct {
	TemplateID  string
	Placeholder string
	Detail      string
}

func (e *RenderError) Error() string {
	if e.Placeholder != "" {
		return fmt.Sprintf("render %s: placeholder %q: %s", e.TemplateID, e.Placeholder, e.Detail)
	}
	return fmt.Sprintf("render %s: %s", e.TemplateID, e.Detail)
}

// CompileError reports a failed compilation. Timeout is set when the
// compiler process was killed for exceeding its deadline; otherwise
// Diagnostics holds the compiler's full ordered output.
type CompileError struct {
	Timeout     bool
	Diagnostics []Diagnostic
	Detail      string
}

func (e *CompileError) Error() string {
	if e.Timeout {
		return "compilation timed out"
	}
	if n := len(e.errorDiagnostics()); n > 0 {
		msgs := make([]string, 0, n)
		for _, d := range e.errorDiagnostics() {
			msgs = append(msgs, d.Message)
		}
		return fmt.Sprintf("compilation failed with %d error(s): %s", n, strings.Join(msgs, "; "))
	}
	return fmt.Sprintf("compilation failed: %s", e.Detail)
}

func (e *CompileError) errorDiagnostics() []Diagnostic {
	var errs []Diagnostic
	for _, d := range e.Diagnostics {
		if d.Severity == SeverityError {
			errs = append(errs, d)
		}
	}
	return errs
}

// EncodingError reports a constructor argument that could not be encoded
// against the ABI's constructor signature.
type EncodingError struct {
	Param string
	Err   error
}

func (e *EncodingError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("encode constructor argument %q: %v", e.Param, e.Err)
	}
	return fmt.Sprintf("encode constructor arguments: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// SigningError reports signer refusal or unavailability. The executor never
// holds key material, so every signature failure surfaces through this type.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string { return fmt.Sprintf("sign deployment transaction: %v", e.Err) }

func (e *SigningError) Unwrap() error { return e.Err }

// BroadcastError reports a failure between the signed transaction and the
// network: dial, fee/nonce queries, gas estimation, or the send itself.
type BroadcastError struct {
	Stage string
	Err   error
}

func (e *BroadcastError) Error() string {
	return fmt.Sprintf("broadcast: %s: %v", e.Stage, e.Err)
}

func (e *BroadcastError) Unwrap() error { return e.Err }

// ConfirmationTimeoutError reports a transaction that was broadcast but not
// confirmed within the bounded wait. The transaction is not re-sent; the
// caller decides whether to re-invoke the pipeline.
type ConfirmationTimeoutError struct {
	TxHash        common.Hash
	Confirmations uint64
}

func (e *ConfirmationTimeoutError) Error() string {
	return fmt.Sprintf("transaction %s not confirmed within deadline (%d confirmation(s) required)",
		e.TxHash.Hex(), e.Confirmations)
}
