package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/schemactl/schemactl/internal/app"
	"github.com/schemactl/schemactl/internal/object"
)

// Exit codes, one per failure class, so CI pipelines can branch on them.
const (
	ExitOK                 = 0
	ExitUnexpected         = 1
	ExitUsage              = 2
	ExitInvalidDefinitions = 3
	ExitCycle              = 4
	ExitExecution          = 5
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// NewRootCommand builds the schemactl command tree.
func NewRootCommand(outW io.Writer) *cobra.Command {
	cfg := app.Config{}

	root := &cobra.Command{
		Use:           "schemactl",
		Short:         "Reconcile declared database objects against a live target",
		Long:          "schemactl loads HCL definitions of database objects, compares them with the live state of a target database, and prints or applies an ordered plan of CREATE/ALTER statements.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)

	pf := root.PersistentFlags()
	pf.StringVar(&cfg.DefinitionsPath, "definitions", "definitions", "Path to the definitions directory or a single .hcl file.")
	pf.StringVar(&cfg.TargetsPath, "targets", "targets.toml", "Path to the targets file.")
	pf.StringVar(&cfg.TargetName, "target", "", "Name of the target to reconcile against.")
	pf.StringVar(&cfg.LogLevel, "log-level", "info", "Logging level: debug, info, warn, or error.")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log output format: text or json.")
	pf.BoolVar(&cfg.Color, "color", false, "Color the plan and report output.")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Build and print the reconciliation plan without touching the target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(outW, cfg, func(a *app.App) error { return a.Plan(cmd.Context()) })
		},
	}
	addWorkersFlag(planCmd.Flags(), &cfg)
	planCmd.Flags().BoolVar(&cfg.KeepGoing, "keep-going", true, "Continue past per-object state fetch errors.")

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Build the plan and execute it against the target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(outW, cfg, func(a *app.App) error { return a.Apply(cmd.Context()) })
		},
	}
	addWorkersFlag(applyCmd.Flags(), &cfg)
	applyCmd.Flags().BoolVar(&cfg.KeepGoing, "keep-going", false, "Continue past per-object state fetch errors.")
	applyCmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "Render every statement but issue none of them.")

	destroyCmd := &cobra.Command{
		Use:   "destroy",
		Short: "Drop every declared object, dependents first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(outW, cfg, func(a *app.App) error { return a.Destroy(cmd.Context()) })
		},
	}
	addWorkersFlag(destroyCmd.Flags(), &cfg)
	destroyCmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "Render every statement but issue none of them.")

	root.AddCommand(planCmd, applyCmd, destroyCmd)
	return root
}

func addWorkersFlag(fs *pflag.FlagSet, cfg *app.Config) {
	fs.IntVar(&cfg.Workers, "workers", 0, "Concurrent live-state fetches (0 uses the target's fetch_workers).")
}

// run validates config, constructs the App, invokes the command action, and
// maps domain errors to exit codes.
func run(outW io.Writer, cfg app.Config, action func(*app.App) error) error {
	if err := validateLogFlags(cfg); err != nil {
		return err
	}

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	a := app.New(outW, validated)
	if err := action(a); err != nil {
		return mapError(err)
	}
	return nil
}

func validateLogFlags(cfg app.Config) error {
	format := strings.ToLower(cfg.LogFormat)
	if format != "text" && format != "json" {
		return &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
}

// mapError classifies a pipeline failure into its exit code. Cycle errors
// are checked before general definition errors because a cycle is also,
// loosely, an invalid definition set and must win the more specific code.
func mapError(err error) error {
	switch {
	case errors.Is(err, object.ErrCycle):
		return &ExitError{Code: ExitCycle, Message: err.Error()}
	case errors.Is(err, object.ErrInvalidDefinitions):
		return &ExitError{Code: ExitInvalidDefinitions, Message: err.Error()}
	case errors.Is(err, object.ErrProvider), errors.Is(err, object.ErrExecution):
		return &ExitError{Code: ExitExecution, Message: err.Error()}
	default:
		return &ExitError{Code: ExitUnexpected, Message: fmt.Sprintf("unexpected error: %v", err)}
	}
}
