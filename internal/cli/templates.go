package cli

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewTemplatesCmd creates the templates command.
func NewTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "templates",
		Aliases: []string{"ls"},
		Short:   "List available contract templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}

			descriptors, err := a.ListTemplates.Run(cmd.Context())
			if err != nil {
				return err
			}

			if a.Config.JSON {
				type entry struct {
					ID          string   `json:"id"`
					Contract    string   `json:"contract"`
					Description string   `json:"description,omitempty"`
					Params      []string `json:"params"`
				}
				entries := make([]entry, 0, len(descriptors))
				for _, d := range descriptors {
					entries = append(entries, entry{d.ID, d.ContractName, d.Description, d.ParamNames()})
				}
				return json.NewEncoder(os.Stdout).Encode(entries)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"ID", "Contract", "Parameters", "Description"})
			for _, d := range descriptors {
				t.AppendRow(table.Row{
					d.ID,
					d.ContractName,
					strings.Join(d.ParamNames(), ", "),
					d.Description,
				})
			}
			t.SetStyle(table.StyleLight)
			t.Render()
			return nil
		},
	}
}
