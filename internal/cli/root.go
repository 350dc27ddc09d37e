package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/chepyr/task-tracker-cli/internal/config"
	"github.com/chepyr/task-tracker-cli/internal/db"
	"github.com/chepyr/task-tracker-cli/internal/models"
	"github.com/chepyr/task-tracker-cli/internal/service"
	"github.com/spf13/cobra"
)

// Opener opens the repository selected by cfg. The returned func releases it.
type Opener func(cfg *config.Config) (db.TaskRepositoryInterface, func() error, error)

type app struct {
	cfg     *config.Config
	open    Opener
	output  string
	verbose bool

	svc     *service.TaskService
	closeFn func() error
}

// NewRootCmd builds the command tree. Flags start from cfg and override it.
// The returned func releases the repository opened by the command and must be
// called after Execute, whether or not the command failed.
func NewRootCmd(cfg *config.Config, open Opener) (*cobra.Command, func() error) {
	a := &app{cfg: cfg, open: open}

	rootCmd := &cobra.Command{
		Use:   "task-tracker",
		Short: "Track personal tasks from the command line",
		Long: `task-tracker keeps a personal list of tasks with a status of
"to do", "in progress" or "done".

Tasks are stored in a JSON file by default; use --backend to keep them in
memory, in a SQLite database or in PostgreSQL instead.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Backend, "backend", cfg.Backend, "storage backend: memory, file, sqlite or postgres")
	flags.StringVar(&cfg.FilePath, "file", cfg.FilePath, "task file for the file backend")
	flags.StringVar(&cfg.DSN, "dsn", cfg.DSN, "database path (sqlite) or connection string (postgres)")
	flags.StringVarP(&a.output, "output", "o", formatText, "output format: text, json or yaml")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newRemoveCmd(a),
		newMarkCmd(a, "mark-done", "Mark a task as done", "Task completed", (*service.TaskService).CompleteTask),
		newMarkCmd(a, "mark-in-progress", "Mark a task as in progress", "Task started", (*service.TaskService).BeginTask),
		newMarkCmd(a, "mark-todo", "Move a task back to to do", "Task reset", (*service.TaskService).ResetTask),
	)
	return rootCmd, a.close
}

type loadWarner interface {
	LoadWarnings() []error
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.verbose {
		log.SetOutput(cmd.ErrOrStderr())
	} else {
		log.SetOutput(io.Discard)
	}
	if err := validateFormat(a.output); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	repo, closeFn, err := a.open(a.cfg)
	if err != nil {
		return err
	}
	if lw, ok := repo.(loadWarner); ok {
		for _, w := range lw.LoadWarnings() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", w)
		}
	}
	a.svc = service.NewTaskService(repo)
	a.closeFn = closeFn
	return nil
}

// close releases the repository opened by setup. cobra skips post-run hooks
// when RunE fails, so this runs after Execute instead.
func (a *app) close() error {
	if a.closeFn == nil {
		return nil
	}
	closeFn := a.closeFn
	a.closeFn = nil
	return closeFn()
}

// warn lets a persistence warning through as a message; the command still succeeds.
func (a *app) warn(cmd *cobra.Command, err error) error {
	if db.IsPersistenceWarning(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		return nil
	}
	return err
}

// Execute runs the CLI against the environment configuration.
func Execute(version string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}

	rootCmd, closeRepo := NewRootCmd(cfg, OpenRepository)
	rootCmd.Version = version
	err = rootCmd.Execute()
	if cerr := closeRepo(); err == nil {
		err = cerr
	}
	if err != nil {
		reportError(os.Stderr, err)
	}
	return err
}

func reportError(w io.Writer, err error) {
	var nf *notFoundError
	switch {
	case db.IsPersistenceWarning(err):
		fmt.Fprintln(w, "Error:", err)
	case models.IsValidationError(err):
		fmt.Fprintln(w, "Input error:", err)
	case errors.As(err, &nf):
		fmt.Fprintln(w, err)
	default:
		fmt.Fprintln(w, "Error:", err)
	}
}
