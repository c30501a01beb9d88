package commands

import (
	"fmt"
	"strings"

	"github.com/benvon/daily-agent/internal/agent"
	"github.com/benvon/daily-agent/internal/models"
	"github.com/spf13/cobra"
)

// NewChatCmd sends one message to Lokha and prints the replies
func NewChatCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a message to Lokha",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAgent(cmd.Context(), open, func(a *agent.Agent) error {
				resp, err := a.HandleMessage(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				if resp == nil {
					return fmt.Errorf("message is empty")
				}
				for _, e := range resp.Entries {
					if e.Sender == models.SenderAgent {
						fmt.Fprintf(cmd.OutOrStdout(), "Lokha: %s\n", e.Message)
					}
				}
				if draft, ok := a.Draft(); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "(task form open: %q at %s, reply \"yes\" to save)\n", draft.Title, draft.Time)
				}
				return nil
			})
		},
	}
}
