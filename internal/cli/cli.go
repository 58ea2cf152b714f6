// Package cli wires the devc command tree: flag parsing, session
// assembly, and rendering of lifecycle progress.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/devcgo/devc/internal/provider"
)

// App represents the CLI application with all wired dependencies
type App struct {
	rootCmd *cobra.Command

	// Global flags
	workspaceFolder string
	configFile      string
	engine          string
	engineCommand   string
	verbosity       int
	logFormat       string

	// Version information
	version string
	commit  string
	date    string

	// providerOverride substitutes the engine provider, for tests
	providerOverride provider.Provider
}

// New creates a new CLI application
func New() *App {
	app := &App{}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// ExecuteContext runs the CLI application under a caller context so
// signals cancel in-flight engine commands.
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.rootCmd.ExecuteContext(ctx)
}

// workspaceOverridden reports whether the user set --workspace-folder
// explicitly, as opposed to the flag's default.
func (a *App) workspaceOverridden() bool {
	return a.rootCmd.PersistentFlags().Changed("workspace-folder")
}

// SetVersion sets the version string for the version command
func (a *App) SetVersion(version, commit, date string) {
	a.version = version
	a.commit = commit
	a.date = date
}

// setupRootCmd configures the root Cobra command
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "devc",
		Short: "Devcontainer lifecycle manager",
		Long: `devc reads devcontainer.json and drives a container engine through
the full provisioning lifecycle: resolve, build, create, start, and
post-create/post-attach hooks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := a.rootCmd.PersistentFlags()
	flags.StringVarP(&a.workspaceFolder, "workspace-folder", "w", ".",
		"Workspace directory to operate on")
	flags.StringVar(&a.configFile, "config", "",
		"Explicit devcontainer.json path (overrides workspace search)")
	flags.StringVar(&a.engine, "engine", "",
		"Container engine: docker or podman (default: auto-detect)")
	flags.StringVar(&a.engineCommand, "engine-command", "",
		"Engine binary path or name (default: the engine name)")
	flags.CountVarP(&a.verbosity, "verbose", "v",
		"Increase log verbosity (repeatable)")
	flags.StringVar(&a.logFormat, "log-format", "",
		"Log output format: auto, text, or json")

	a.rootCmd.AddCommand(
		NewUpCmd(a),
		NewDownCmd(a),
		NewBuildCmd(a),
		NewExecCmd(a),
		NewPlanCmd(a),
		NewReadConfigurationCmd(a),
		NewVersionCmd(a),
	)
}
