package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewPreviewCmd creates the preview command.
func NewPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <template>",
		Short: "Preview the vesting schedule for a parameter set",
		Long: `Preview validates the given parameters and prints the schedule the
deployed contract would follow, without compiling or deploying anything.
Amounts are shown in basis points of the eventual total.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
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

			result, err := a.PreviewSchedule.Run(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			if a.Config.JSON {
				return json.NewEncoder(os.Stdout).Encode(result.Points)
			}

			fmt.Printf("Schedule for %s (start %d, cliff %ds, duration %ds)\n",
				result.Template.ContractName, result.Schedule.Start, result.Schedule.Cliff, result.Schedule.Duration)

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Point", "Time (UTC)", "Vested"})
			for _, p := range result.Points {
				t.AppendRow(table.Row{
					p.Label,
					p.Time.Format("2006-01-02 15:04:05"),
					fmt.Sprintf("%d.%02d%%", p.VestedBps/100, p.VestedBps%100),
				})
			}
			t.SetStyle(table.StyleLight)
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringArrayP("param", "p", nil, "Template parameter as name=value (repeatable)")
	return cmd
}
