package app

import (
	"log/slog"

	"github.com/xet-labs/xet-composer/internal/adapters/interactive"
	"github.com/xet-labs/xet-composer/internal/api"
	"github.com/xet-labs/xet-composer/internal/domain/config"
	"github.com/xet-labs/xet-composer/internal/usecase"
)

// App is the application container holding configuration and all use cases.
type App struct {
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Templates usecase.TemplateRepository
	Selector  *interactive.SelectorAdapter
	Progress  usecase.ProgressSink

	// Use cases
	ComposeDeployment *usecase.ComposeDeployment
	PreviewSchedule   *usecase.PreviewSchedule
	ListTemplates     *usecase.ListTemplates

	// Surfaces
	APIServer *api.Server
}

// NewApp creates a new application instance with all use cases.
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	templates usecase.TemplateRepository,
	selector *interactive.SelectorAdapter,
	progress usecase.ProgressSink,
	composeDeployment *usecase.ComposeDeployment,
	previewSchedule *usecase.PreviewSchedule,
	listTemplates *usecase.ListTemplates,
	apiServer *api.Server,
) *App {
	return &App{
		Config:            cfg,
		Log:               log,
		Templates:         templates,
		Selector:          selector,
		Progress:          progress,
		ComposeDeployment: composeDeployment,
		PreviewSchedule:   previewSchedule,
		ListTemplates:     listTemplates,
		APIServer:         apiServer,
	}
}
