package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chepyr/task-tracker-cli/internal/models"
	"github.com/chepyr/task-tracker-cli/internal/service"
	"github.com/spf13/cobra"
)

type notFoundError struct {
	id int
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("Task with ID %d not found.", e.id)
}

// found reports a missing task as notFoundError. A nil task that comes with
// an error means the stored row exists but could not be read, so the error
// is returned as is.
func (a *app) found(cmd *cobra.Command, id int, task *models.Task, err error) error {
	if task == nil && err != nil {
		return err
	}
	if err := a.warn(cmd, err); err != nil {
		return err
	}
	if task == nil {
		return &notFoundError{id: id}
	}
	return nil
}

func statusChoices() string {
	names := make([]string, 0, len(models.AllTaskStatuses()))
	for _, s := range models.AllTaskStatuses() {
		names = append(names, strconv.Quote(s.String()))
	}
	return strings.Join(names, ", ")
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, &models.ValidationError{Field: "id", Message: fmt.Sprintf("%q is not a positive integer", arg)}
	}
	return id, nil
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <description>",
		Short: "Add a new task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.svc.AddTask(cmd.Context(), strings.Join(args, " "))
			if err = a.warn(cmd, err); err != nil {
				return err
			}
			return a.printTask(cmd, "Task added", task)
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.svc.ListTasksByName(cmd.Context(), status)
			if err = a.warn(cmd, err); err != nil {
				return err
			}
			return a.printTasks(cmd, tasks)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "only tasks with this status ("+statusChoices()+")")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a task by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := a.svc.GetTask(cmd.Context(), id)
			if err := a.found(cmd, id, task, err); err != nil {
				return err
			}
			return a.printTask(cmd, "Task details", task)
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			removed, err := a.svc.RemoveTask(cmd.Context(), id)
			if err = a.warn(cmd, err); err != nil {
				return err
			}
			if !removed {
				return &notFoundError{id: id}
			}
			return a.printRemoved(cmd, id)
		},
	}
}

type transition func(*service.TaskService, context.Context, int) (*models.Task, error)

func newMarkCmd(a *app, use, short, label string, fn transition) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := fn(a.svc, cmd.Context(), id)
			if err := a.found(cmd, id, task, err); err != nil {
				return err
			}
			return a.printTask(cmd, label, task)
		},
	}
}
