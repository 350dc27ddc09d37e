package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/chepyr/task-tracker-cli/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return &models.ValidationError{Field: "output", Message: fmt.Sprintf("unknown format %q (expected text, json or yaml)", format)}
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}

func (a *app) printTask(cmd *cobra.Command, label string, task *models.Task) error {
	if a.output != formatText {
		return encode(cmd.OutOrStdout(), a.output, task)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", label, task)
	return err
}

func (a *app) printTasks(cmd *cobra.Command, tasks []*models.Task) error {
	out := cmd.OutOrStdout()
	if a.output != formatText {
		return encode(out, a.output, tasks)
	}
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(out, "No tasks found.")
		return err
	}
	fmt.Fprintln(out, "To-Do List:")
	for _, task := range tasks {
		fmt.Fprintf(out, "- %s\n", task)
	}
	return nil
}

func (a *app) printRemoved(cmd *cobra.Command, id int) error {
	if a.output != formatText {
		return encode(cmd.OutOrStdout(), a.output, struct {
			ID      int  `json:"id" yaml:"id"`
			Removed bool `json:"removed" yaml:"removed"`
		}{id, true})
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Task with ID %d removed.\n", id)
	return err
}
