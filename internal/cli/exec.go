package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devcgo/devc/internal/config"
	"github.com/devcgo/devc/internal/provider"
)

// ExitCodeError carries a command's non-zero exit code to the process
// boundary so main can propagate it.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.Code)
}

// NewExecCmd creates the exec command
func NewExecCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec -- command [args...]",
		Short: "Run a command inside the running devcontainer",
		Long: `Exec runs a command in the project's container and relays its output.
The command's exit code becomes devc's exit code.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Exec(cmd, args)
		},
	}

	return cmd
}

// Exec runs argv in the project container.
func (a *App) Exec(cmd *cobra.Command, argv []string) error {
	sess, err := a.newSession(config.Overrides{})
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	prep, err := sess.Provider.Prepare(ctx, sess.Config)
	if err != nil {
		return err
	}

	container := &provider.RunningContainer{Name: prep.ContainerName}
	result, err := sess.Provider.Exec(ctx, container, argv)
	if err != nil {
		return err
	}

	if result.Stdout != "" {
		fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
	}

	if result.ExitCode != 0 {
		return &ExitCodeError{Code: result.ExitCode}
	}
	return nil
}
