package config

import (
	"time"

	"github.com/xet-labs/xet-composer/internal/domain"
)

// RuntimeConfig is the complete resolved runtime configuration. It is built
// once by the config provider and injected into use cases and adapters;
// everything here is read-only after startup.
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Template source
	TemplatesDir string // empty means builtin templates only

	// Compiler settings
	SolcPath       string
	SolcOptimize   bool
	SolcRuns       int
	CompileTimeout time.Duration
	ImportRoots    []string // vendored library roots passed to solc

	// Deployment settings
	Network        *domain.Network // nil if not specified
	PrivateKey     string          // hex; empty means no signer configured
	Confirmations  uint64
	ConfirmTimeout time.Duration
	SignTimeout    time.Duration

	// Artifact persistence (best effort, post-deploy)
	ArtifactDir string // empty disables persistence

	// API server
	ListenAddr     string
	AllowedOrigins []string

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool
}
