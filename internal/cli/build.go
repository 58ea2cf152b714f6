package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devcgo/devc/internal/config"
	"github.com/devcgo/devc/internal/events"
)

// BuildOptions holds flags for the build command
type BuildOptions struct {
	Image   string // Override the image reference
	NoCache bool   // Accepted but not supported; warns
}

// NewBuildCmd creates the build command
func NewBuildCmd(app *App) *cobra.Command {
	opts := BuildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build or pull the devcontainer image without starting it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Build(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Image, "image", "", "Override the image reference")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Request an uncached build (warns, unsupported)")

	return cmd
}

// Build makes the image available without touching the container.
func (a *App) Build(cmd *cobra.Command, opts BuildOptions) error {
	sess, err := a.newSession(config.Overrides{ImageReference: opts.Image})
	if err != nil {
		return err
	}
	defer sess.Close()

	renderer := NewRenderer(cmd.OutOrStdout())
	sess.Events.Subscribe(renderer.Handle)

	if opts.NoCache {
		sess.Events.Emit(events.Event{
			Type:   events.Warning,
			Detail: "--no-cache is not supported and was ignored",
		})
	}

	ctx := cmd.Context()
	prep, err := sess.Provider.Prepare(ctx, sess.Config)
	if err != nil {
		return err
	}

	reference, err := sess.Provider.BuildImage(ctx, sess.Config, prep)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderer.Success(
		fmt.Sprintf("Image %s is available", reference)))
	return nil
}
