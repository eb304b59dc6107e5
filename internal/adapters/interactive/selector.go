package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"

	"github.com/xet-labs/xet-composer/internal/domain"
	"github.com/xet-labs/xet-composer/internal/domain/config"
)

// SelectorAdapter handles interactive template selection.
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter.
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// SelectTemplate prompts the user to pick one of the given templates.
func (s *SelectorAdapter) SelectTemplate(ctx context.Context, descriptors []*domain.TemplateDescriptor, prompt string) (*domain.TemplateDescriptor, error) {
	if s.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("no templates available for selection")
	}
	if len(descriptors) == 1 {
		return descriptors[0], nil
	}

	options := make([]string, len(descriptors))
	for i, d := range descriptors {
		label := d.ID
		if d.Description != "" {
			label = fmt.Sprintf("%s — %s", d.ID, d.Description)
		}
		options[i] = label
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	sel := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher: func(input string, index int) bool {
			if strings.TrimSpace(input) == "" {
				return true
			}
			return len(fuzzy.Find(input, []string{options[index]})) > 0
		},
	}

	index, _, err := sel.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}
	return descriptors[index], nil
}
