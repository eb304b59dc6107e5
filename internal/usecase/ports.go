package usecase

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/xet-labs/xet-composer/internal/domain"
)

// TemplateRepository provides read-only access to contract templates.
type TemplateRepository interface {
	Get(ctx context.Context, id string) (*domain.TemplateDescriptor, error)
	List(ctx context.Context) ([]*domain.TemplateDescriptor, error)
}

// ParameterValidator checks raw caller input against a template's declared
// constraints. Either every constraint passes and a complete ParameterSet
// is returned, or the whole input is rejected with a ValidationError.
type ParameterValidator interface {
	Validate(ctx context.Context, d *domain.TemplateDescriptor, raw map[string]string) (*domain.ParameterSet, error)
}

// SourceRenderer substitutes a validated parameter set into a template.
type SourceRenderer interface {
	Render(ctx context.Context, d *domain.TemplateDescriptor, set *domain.ParameterSet) (*domain.RenderedSource, error)
}

// Compiler drives the external compiler on rendered source.
type Compiler interface {
	Compile(ctx context.Context, src *domain.RenderedSource) (*domain.CompilationArtifact, error)
}

// ContractDeployer builds, signs, broadcasts and awaits the deployment
// transaction for a compiled artifact.
type ContractDeployer interface {
	Deploy(ctx context.Context, req *domain.DeploymentRequest) (*domain.DeploymentResult, error)
}

// Signer produces transaction signatures without exposing key material to
// the pipeline. Implementations may call out to remote services; callers
// bound them with the context.
type Signer interface {
	Address() common.Address
	SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// ArtifactStore persists a deployment record. Persistence is best effort;
// the pipeline result never depends on it.
type ArtifactStore interface {
	Save(ctx context.Context, rec *domain.DeploymentRecord) (string, error)
}

// ProgressEvent represents a progress update from a pipeline stage.
type ProgressEvent struct {
	Stage   string
	Message string
}

// ProgressSink receives progress events.
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
}

// NopProgress is a no-op implementation of ProgressSink.
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
