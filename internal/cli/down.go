package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devcgo/devc/internal/config"
	"github.com/devcgo/devc/internal/provider"
)

// DownOptions holds flags for the down command
type DownOptions struct {
	RemoveVolumes bool // Also remove the project data volume
	RemoveUnknown bool // Request removal of resources the tool did not create
}

// NewDownCmd creates the down command
func NewDownCmd(app *App) *cobra.Command {
	opts := DownOptions{}

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop the devcontainer and remove its resources",
		Long: `Down stops the project's container and removes the container and
network. The data volume is kept unless --remove-volumes is given.
Resources that no longer exist are treated as already removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Down(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.RemoveVolumes, "remove-volumes", false, "Also remove the project data volume")
	cmd.Flags().BoolVar(&opts.RemoveUnknown, "remove-unknown", false, "Request removal of unmanaged resources (warns, unsupported)")

	return cmd
}

// Down tears the devcontainer back down.
func (a *App) Down(cmd *cobra.Command, opts DownOptions) error {
	sess, err := a.newSession(config.Overrides{})
	if err != nil {
		return err
	}
	defer sess.Close()

	renderer := NewRenderer(cmd.OutOrStdout())
	sess.Events.Subscribe(renderer.Handle)

	ctx := cmd.Context()
	prep, err := sess.Provider.Prepare(ctx, sess.Config)
	if err != nil {
		return err
	}

	if err := sess.Provider.StopContainer(ctx, sess.Config, prep, nil); err != nil {
		return err
	}

	removeVolumes := opts.RemoveVolumes || sess.Settings.Down.RemoveVolumes
	err = sess.Provider.Cleanup(ctx, sess.Config, prep, provider.CleanupOptions{
		RemoveVolumes: removeVolumes,
		RemoveUnknown: opts.RemoveUnknown,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderer.Success(
		fmt.Sprintf("Devcontainer %s removed", prep.ContainerName)))
	return nil
}
