package commands

import (
	"fmt"
	"strconv"

	"github.com/benvon/daily-agent/internal/agent"
	"github.com/spf13/cobra"
)

// NewPatternsCmd creates the patterns command for trained responses
func NewPatternsCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage trained trigger/response patterns",
	}
	cmd.AddCommand(newPatternsListCmd(open))
	cmd.AddCommand(newPatternsAddCmd(open))
	cmd.AddCommand(newPatternsDeleteCmd(open))
	return cmd
}

func newPatternsListCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trained patterns in match order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAgent(cmd.Context(), open, func(a *agent.Agent) error {
				patterns := a.Patterns()
				if len(patterns) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No trained patterns.")
					return nil
				}
				for i, p := range patterns {
					fmt.Fprintf(cmd.OutOrStdout(), "%d. %q -> %q\n", i, p.Trigger, p.Response)
				}
				return nil
			})
		},
	}
}

func newPatternsAddCmd(open Opener) *cobra.Command {
	var trigger, response string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Teach Lokha a response",
		Long:  "Add a pattern. Messages containing the trigger get the response; {userName} is replaced with your name.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAgent(cmd.Context(), open, func(a *agent.Agent) error {
				p, err := a.AddPattern(cmd.Context(), trigger, response)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Learned %q -> %q\n", p.Trigger, p.Response)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&trigger, "trigger", "", "Text that triggers the response (required)")
	cmd.Flags().StringVar(&response, "response", "", "Response to give (required)")
	return cmd
}

func newPatternsDeleteCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete the pattern at index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			return withAgent(cmd.Context(), open, func(a *agent.Agent) error {
				p, err := a.DeletePattern(cmd.Context(), index)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forgot %q\n", p.Trigger)
				return nil
			})
		},
	}
}
