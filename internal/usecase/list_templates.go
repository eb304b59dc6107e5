package usecase

import (
	"context"

	"github.com/xet-labs/xet-composer/internal/domain"
)

// ListTemplates exposes the template catalog to the presentation layers.
type ListTemplates struct {
	templates TemplateRepository
}

// NewListTemplates creates the use case.
func NewListTemplates(templates TemplateRepository) *ListTemplates {
	return &ListTemplates{templates: templates}
}

// Run returns every known template descriptor.
func (uc *ListTemplates) Run(ctx context.Context) ([]*domain.TemplateDescriptor, error) {
	return uc.templates.List(ctx)
}
