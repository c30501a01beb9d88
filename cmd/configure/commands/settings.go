package commands

import (
	"fmt"

	"github.com/benvon/daily-agent/internal/agent"
	"github.com/benvon/daily-agent/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewSettingsCmd creates the settings command with show and set subcommands.
func NewSettingsCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
	}
	cmd.AddCommand(newSettingsShowCmd(open))
	cmd.AddCommand(newSettingsSetCmd(open))
	return cmd
}

func newSettingsShowCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print current settings as YAML",
		Long:  "Print current settings. The output can be used as the settings block of a seed file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAgent(cmd.Context(), open, func(a *agent.Agent) error {
				return printSettings(cmd, a.Settings())
			})
		},
	}
}

func printSettings(cmd *cobra.Command, settings models.Settings) error {
	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func newSettingsSetCmd(open Opener) *cobra.Command {
	var s models.Settings
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings",
		Long:  "Change one or more settings. Only flags that are passed are applied.",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.NFlag() == 0 {
				return fmt.Errorf("no settings given, see --help")
			}
			return withAgent(cmd.Context(), open, func(a *agent.Agent) error {
				current := a.Settings()
				if flags.Changed("name") {
					current.UserName = s.UserName
				}
				if flags.Changed("timezone") {
					current.Timezone = s.Timezone
				}
				if flags.Changed("notifications") {
					current.EnableNotifications = s.EnableNotifications
				}
				if flags.Changed("sound") {
					current.EnableSound = s.EnableSound
				}
				if flags.Changed("voice") {
					current.EnableVoiceResponse = s.EnableVoiceResponse
				}
				if flags.Changed("advance") {
					current.ReminderAdvanceMinutes = s.ReminderAdvanceMinutes
				}
				if flags.Changed("screen-limit") {
					current.EnableScreenTimeLimit = s.EnableScreenTimeLimit
				}
				if flags.Changed("limit-hours") {
					current.DailyLimitHours = s.DailyLimitHours
				}
				if flags.Changed("wake-lock") {
					current.EnableWakeLock = s.EnableWakeLock
				}
				if flags.Changed("alarm") {
					current.EnableAlarm = s.EnableAlarm
				}

				saved, err := a.SaveSettings(cmd.Context(), current)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Settings updated.")
				return printSettings(cmd, saved)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&s.UserName, "name", "", "Name Lokha calls you")
	f.StringVar(&s.Timezone, "timezone", "", "Timezone label")
	f.BoolVar(&s.EnableNotifications, "notifications", true, "Deliver reminder notifications")
	f.BoolVar(&s.EnableSound, "sound", true, "Beep on reminders")
	f.BoolVar(&s.EnableVoiceResponse, "voice", false, "Speak replies and reminders")
	f.IntVar(&s.ReminderAdvanceMinutes, "advance", models.DefaultReminderAdvanceMinutes, "Minutes before a task to remind")
	f.BoolVar(&s.EnableScreenTimeLimit, "screen-limit", false, "Warn when daily screen time is exceeded")
	f.Float64Var(&s.DailyLimitHours, "limit-hours", models.DefaultDailyLimitHours, "Daily screen time limit in hours")
	f.BoolVar(&s.EnableWakeLock, "wake-lock", false, "Keep the screen awake")
	f.BoolVar(&s.EnableAlarm, "alarm", false, "Ring an alarm until stopped")
	return cmd
}
