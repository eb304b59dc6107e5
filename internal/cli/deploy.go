package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/xet-labs/xet-composer/internal/adapters/progress"
	"github.com/xet-labs/xet-composer/internal/app"
	"github.com/xet-labs/xet-composer/internal/domain"
	"github.com/xet-labs/xet-composer/internal/usecase"
)

// NewDeployCmd creates the deploy command.
func NewDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy [template]",
		Short: "Render, compile and deploy a contract template",
		Long: `Deploy validates the given parameters against the template's declared
constraints, renders the contract source, compiles it with solc and
broadcasts the deployment transaction to the configured network.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			templateID, err := resolveTemplateID(cmd, a, args)
			if err != nil {
				return err
			}

			rawParams, err := cmd.Flags().GetStringArray("param")
			if err != nil {
				return err
			}
			params, err := parseParams(rawParams)
			if err != nil {
				return err
			}
			if err := promptMissingParams(cmd, a, templateID, params); err != nil {
				return err
			}

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			result, err := a.ComposeDeployment.Execute(cmd.Context(), usecase.ComposeParams{
				TemplateID: templateID,
				Parameters: params,
				DryRun:     dryRun,
			})
			if sink, ok := a.Progress.(*progress.SpinnerSink); ok {
				sink.Stop()
			}
			if err != nil {
				return err
			}

			return renderComposeResult(a, result)
		},
	}

	cmd.Flags().StringArrayP("param", "p", nil, "Template parameter as name=value (repeatable)")
	cmd.Flags().Bool("dry-run", false, "Compile only; do not sign or broadcast")
	return cmd
}

// resolveTemplateID takes the template from args or, interactively, from a
// selection prompt.
func resolveTemplateID(cmd *cobra.Command, a *app.App, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if a.Config.NonInteractive {
		return "", fmt.Errorf("template argument is required in non-interactive mode")
	}

	descriptors, err := a.ListTemplates.Run(cmd.Context())
	if err != nil {
		return "", err
	}
	selected, err := a.Selector.SelectTemplate(cmd.Context(), descriptors, "Select a template to deploy")
	if err != nil {
		return "", err
	}
	return selected.ID, nil
}

// parseParams splits repeated name=value flags into a parameter map.
func parseParams(raw []string) (map[string]string, error) {
	params := make(map[string]string, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q: expected name=value", kv)
		}
		params[name] = value
	}
	return params, nil
}

// promptMissingParams asks for each declared parameter the flags did not
// provide. Non-interactive runs skip this and let validation report the
// missing fields.
func promptMissingParams(cmd *cobra.Command, a *app.App, templateID string, params map[string]string) error {
	if a.Config.NonInteractive {
		return nil
	}
	descriptor, err := a.Templates.Get(cmd.Context(), templateID)
	if err != nil {
		return err
	}
	for _, p := range descriptor.Params {
		if _, ok := params[p.Name]; ok {
			continue
		}
		label := p.Name
		if p.Description != "" {
			label = fmt.Sprintf("%s (%s)", p.Name, p.Description)
		}
		prompt := promptui.Prompt{Label: label}
		value, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("input cancelled: %w", err)
		}
		params[p.Name] = value
	}
	return nil
}

// renderComposeResult prints the pipeline outcome.
func renderComposeResult(a *app.App, result *usecase.ComposeResult) error {
	if a.Config.JSON {
		out := map[string]any{
			"success": result.Success,
			"message": result.Message,
		}
		if result.Result != nil {
			out["contract_address"] = result.Result.Address.Hex()
			out["tx_hash"] = result.Result.TxHash.Hex()
			out["abi"] = json.RawMessage(result.Result.ABI)
		}
		if result.RecordPath != "" {
			out["record"] = result.RecordPath
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	color.New(color.FgGreen, color.Bold).Println("✓ " + result.Message)
	if result.Result != nil {
		fmt.Printf("  Address: %s\n", color.CyanString(result.Result.Address.Hex()))
		fmt.Printf("  Tx:      %s\n", result.Result.TxHash.Hex())
		if a.Config.Network != nil && a.Config.Network.ExplorerURL != "" {
			fmt.Printf("  Explorer: %s/address/%s\n",
				strings.TrimSuffix(a.Config.Network.ExplorerURL, "/"), result.Result.Address.Hex())
		}
	}
	if result.Artifact != nil {
		printWarnings(result.Artifact)
	}
	if result.RecordPath != "" {
		fmt.Printf("  Record:  %s\n", result.RecordPath)
	}
	return nil
}

func printWarnings(artifact *domain.CompilationArtifact) {
	for _, d := range artifact.Diagnostics {
		if d.Severity != domain.SeverityWarning {
			continue
		}
		color.New(color.FgYellow).Printf("  warning: %s\n", d.Message)
	}
}
