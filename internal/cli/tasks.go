package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/planmesh/core"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and manage paused task states",
	}
	cmd.AddCommand(newTasksListCmd())
	cmd.AddCommand(newTasksShowCmd())
	cmd.AddCommand(newTasksStatusCmd())
	cmd.AddCommand(newTasksDeleteCmd())
	return cmd
}

func newTasksListCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's tasks, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			entries, err := m.States().ListPausedTasks(cmd.Context(), userID)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "TASK\tAGENT\tSTATUS\tSAVED")
			for _, e := range entries {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.TaskID, e.AgentType, e.Status, e.SavedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newTasksShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Print a task state as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			st, err := m.States().LoadState(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if st == nil {
				return core.TaskNotFound(args[0])
			}
			return printJSON(cmd, st)
		},
	}
}

func newTasksStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <task-id> <running|paused|completed|failed>",
		Short: "Set a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			ok, err := m.States().TaskExists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return core.TaskNotFound(args[0])
			}
			if err := m.States().UpdateTaskStatus(cmd.Context(), args[0], core.TaskStatus(args[1])); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", args[0], args[1])
			return nil
		},
	}
}

func newTasksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = m.Close() }()

			if err := m.States().DeleteState(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}
}
