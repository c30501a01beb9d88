package commands

import (
	"fmt"
	"os"

	"github.com/benvon/daily-agent/internal/agent"
	"github.com/benvon/daily-agent/internal/export"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export today's schedule",
	}
	cmd.AddCommand(newExportPDFCmd(open))
	return cmd
}

func newExportPDFCmd(open Opener) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Write today's schedule as a PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAgent(cmd.Context(), open, func(a *agent.Agent) error {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				if err := export.SchedulePDF(f, a.TodayTasks(), a.Now()); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schedule written to %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "schedule.pdf", "Output file")
	return cmd
}
