//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/xet-labs/xet-composer/internal/adapters/blockchain"
	"github.com/xet-labs/xet-composer/internal/adapters/fs"
	"github.com/xet-labs/xet-composer/internal/adapters/interactive"
	"github.com/xet-labs/xet-composer/internal/adapters/parameters"
	"github.com/xet-labs/xet-composer/internal/adapters/progress"
	"github.com/xet-labs/xet-composer/internal/adapters/solc"
	"github.com/xet-labs/xet-composer/internal/adapters/templates"
	"github.com/xet-labs/xet-composer/internal/api"
	"github.com/xet-labs/xet-composer/internal/config"
	"github.com/xet-labs/xet-composer/internal/logging"
	"github.com/xet-labs/xet-composer/internal/usecase"
)

// InitApp creates a fully wired App instance.
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		config.Provider,
		logging.NewLogger,

		// Adapters
		templates.NewRepositoryAdapter,
		wire.Bind(new(usecase.TemplateRepository), new(*templates.RepositoryAdapter)),
		parameters.NewValidatorAdapter,
		wire.Bind(new(usecase.ParameterValidator), new(*parameters.ValidatorAdapter)),
		templates.NewRendererAdapter,
		wire.Bind(new(usecase.SourceRenderer), new(*templates.RendererAdapter)),
		solc.NewCompilerAdapter,
		wire.Bind(new(usecase.Compiler), new(*solc.CompilerAdapter)),
		blockchain.NewSignerFromConfig,
		blockchain.NewDeployerAdapter,
		wire.Bind(new(usecase.ContractDeployer), new(*blockchain.DeployerAdapter)),
		fs.NewArtifactStoreAdapter,
		wire.Bind(new(usecase.ArtifactStore), new(*fs.ArtifactStoreAdapter)),
		interactive.NewSelectorAdapter,
		progress.NewSinkFromConfig,

		// Use cases
		usecase.NewComposeDeployment,
		usecase.NewPreviewSchedule,
		usecase.NewListTemplates,

		// Surfaces
		api.NewServer,

		NewApp,
	)
	return nil, nil
}
