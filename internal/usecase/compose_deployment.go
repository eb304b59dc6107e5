package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xet-labs/xet-composer/internal/domain"
	"github.com/xet-labs/xet-composer/internal/domain/config"
)

// ComposeDeployment is the pipeline orchestrator: it sequences validation,
// rendering, compilation and deployment for a single request. Data flows
// one way; each stage either produces the next stage's exact input or a
// terminal error, and no stage retries another stage's work.
type ComposeDeployment struct {
	cfg       *config.RuntimeConfig
	templates TemplateRepository
	validator ParameterValidator
	renderer  SourceRenderer
	compiler  Compiler
	deployer  ContractDeployer
	store     ArtifactStore
	progress  ProgressSink
	log       *slog.Logger
}

// NewComposeDeployment creates the orchestrator.
func NewComposeDeployment(
	cfg *config.RuntimeConfig,
	templates TemplateRepository,
	validator ParameterValidator,
	renderer SourceRenderer,
	compiler Compiler,
	deployer ContractDeployer,
	store ArtifactStore,
	progress ProgressSink,
	log *slog.Logger,
) *ComposeDeployment {
	return &ComposeDeployment{
		cfg:       cfg,
		templates: templates,
		validator: validator,
		renderer:  renderer,
		compiler:  compiler,
		deployer:  deployer,
		store:     store,
		progress:  progress,
		log:       log.With("component", "ComposeDeployment"),
	}
}

// ComposeParams are the caller-supplied inputs for one pipeline run.
type ComposeParams struct {
	TemplateID string
	Parameters map[string]string
	// DryRun stops after compilation; nothing is signed or broadcast.
	DryRun bool
}

// ComposeResult is the terminal outcome returned to the caller. The
// pipeline does not retain it.
type ComposeResult struct {
	Success  bool
	Message  string
	Result   *domain.DeploymentResult
	Artifact *domain.CompilationArtifact
	// RecordPath is where the deployment record was persisted, if at all.
	RecordPath string
}

// Execute runs the pipeline once. All errors are terminal for this request;
// the caller decides whether to re-invoke.
func (uc *ComposeDeployment) Execute(ctx context.Context, params ComposeParams) (*ComposeResult, error) {
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "resolve", Message: "resolving template " + params.TemplateID})
	descriptor, err := uc.templates.Get(ctx, params.TemplateID)
	if err != nil {
		return nil, err
	}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "validate", Message: "validating parameters"})
	set, err := uc.validator.Validate(ctx, descriptor, params.Parameters)
	if err != nil {
		return nil, err
	}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "render", Message: "rendering " + descriptor.ContractName})
	source, err := uc.renderer.Render(ctx, descriptor, set)
	if err != nil {
		return nil, err
	}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "compile", Message: "compiling " + descriptor.ContractName})
	artifact, err := uc.compiler.Compile(ctx, source)
	if err != nil {
		return nil, err
	}

	if params.DryRun {
		return &ComposeResult{
			Success:  true,
			Message:  fmt.Sprintf("contract %s compiled (dry run, not deployed)", descriptor.ContractName),
			Artifact: artifact,
		}, nil
	}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: "deploy", Message: "deploying to " + uc.networkName()})
	result, err := uc.deployer.Deploy(ctx, &domain.DeploymentRequest{
		Artifact:   artifact,
		Descriptor: descriptor,
		Params:     set,
		Network:    uc.cfg.Network,
	})
	if err != nil {
		return nil, err
	}

	res := &ComposeResult{
		Success:  true,
		Message:  result.Message,
		Result:   result,
		Artifact: artifact,
	}
	res.RecordPath = uc.saveRecord(ctx, artifact, result)
	return res, nil
}

// saveRecord persists the deployment record. Best effort: a store failure
// is logged and the deployment still reports success.
func (uc *ComposeDeployment) saveRecord(ctx context.Context, artifact *domain.CompilationArtifact, result *domain.DeploymentResult) string {
	if uc.store == nil {
		return ""
	}
	rec := &domain.DeploymentRecord{
		ContractName: artifact.ContractName,
		ABI:          result.ABI,
		Bytecode:     fmt.Sprintf("0x%x", artifact.Bytecode),
		Address:      result.Address.Hex(),
		TxHash:       result.TxHash.Hex(),
		Network:      uc.networkName(),
	}
	if uc.cfg.Network != nil {
		rec.ChainID = uc.cfg.Network.ChainID
	}
	path, err := uc.store.Save(ctx, rec)
	if err != nil {
		uc.log.Warn("failed to save deployment record", "error", err)
		return ""
	}
	return path
}

func (uc *ComposeDeployment) networkName() string {
	if uc.cfg.Network != nil {
		return uc.cfg.Network.Name
	}
	return "unconfigured"
}
