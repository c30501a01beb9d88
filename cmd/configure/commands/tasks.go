package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/benvon/daily-agent/internal/agent"
	"github.com/benvon/daily-agent/internal/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewTasksCmd creates the tasks command
func NewTasksCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List, add and complete tasks",
	}
	cmd.AddCommand(newTasksListCmd(open))
	cmd.AddCommand(newTasksAddCmd(open))
	cmd.AddCommand(newTasksToggleCmd(open))
	cmd.AddCommand(newTasksRoutineCmd(open))
	return cmd
}

func newTasksListCmd(open Opener) *cobra.Command {
	var today bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAgent(cmd.Context(), open, func(a *agent.Agent) error {
				tasks := a.Tasks()
				if today {
					tasks = a.TodayTasks()
				}
				if len(tasks) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
					return nil
				}
				for _, t := range tasks {
					printTask(cmd.OutOrStdout(), t)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&today, "today", false, "Only tasks that apply today, ordered by time")
	return cmd
}

func printTask(w io.Writer, t *models.Task) {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "%s [%s] %s (%s) %s\n", t.Time, mark, t.Title, strings.Join(t.Days, ","), t.ID)
}

func newTasksAddCmd(open Opener) *cobra.Command {
	var (
		draft      models.TaskDraft
		noReminder bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.ReminderEnabled = !noReminder
			return withAgent(cmd.Context(), open, func(a *agent.Agent) error {
				task, err := a.CreateTask(cmd.Context(), draft)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Task added:")
				printTask(cmd.OutOrStdout(), task)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&draft.Title, "title", "", "Task title (required)")
	f.StringVar(&draft.Time, "time", "", "Time of day as HH:MM (required)")
	f.StringSliceVar(&draft.Days, "days", nil, "Days the task applies to, e.g. Mon,Wed or today (default today)")
	f.StringVar(&draft.Notes, "notes", "", "Free-form notes")
	f.BoolVar(&noReminder, "no-reminder", false, "Do not send reminders for this task")
	return cmd
}

func newTasksToggleCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Flip a task between done and not done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			return withAgent(cmd.Context(), open, func(a *agent.Agent) error {
				task, err := a.ToggleTask(cmd.Context(), id)
				if err != nil {
					return err
				}
				printTask(cmd.OutOrStdout(), task)
				return nil
			})
		},
	}
}

func newTasksRoutineCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "routine",
		Short: "Add one of the built-in routines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAgent(cmd.Context(), open, func(a *agent.Agent) error {
				routine, added := a.AddRoutine(cmd.Context())
				fmt.Fprintf(cmd.OutOrStdout(), "Added routine %q:\n", routine.Title)
				for _, t := range added {
					printTask(cmd.OutOrStdout(), t)
				}
				return nil
			})
		},
	}
}
