package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devcgo/devc/internal/config"
	"github.com/devcgo/devc/internal/lifecycle"
)

// UpOptions holds flags for the up command
type UpOptions struct {
	ProjectName    string // Override the resolved project name
	Image          string // Override the image reference
	SkipPostCreate bool   // Skip the postCreateCommand hook
	SkipPostAttach bool   // Skip the postAttachCommand hook
}

// NewUpCmd creates the up command
func NewUpCmd(app *App) *cobra.Command {
	opts := UpOptions{}

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Provision and start the devcontainer",
		Long: `Up runs the full lifecycle: resolve configuration, ensure networks and
volumes, build or pull the image, create and start the container, then
run the post-create and post-attach hooks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Up(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ProjectName, "project-name", "", "Override the project name")
	cmd.Flags().StringVar(&opts.Image, "image", "", "Override the image reference")
	cmd.Flags().BoolVar(&opts.SkipPostCreate, "skip-post-create", false, "Skip the postCreateCommand hook")
	cmd.Flags().BoolVar(&opts.SkipPostAttach, "skip-post-attach", false, "Skip the postAttachCommand hook")

	return cmd
}

// Up provisions the devcontainer end to end.
func (a *App) Up(cmd *cobra.Command, opts UpOptions) error {
	sess, err := a.newSession(config.Overrides{
		ProjectName:    opts.ProjectName,
		ImageReference: opts.Image,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	renderer := NewRenderer(cmd.OutOrStdout())
	sess.Events.Subscribe(renderer.Handle)

	planOpts := lifecycle.PlanOptions{}
	if opts.SkipPostCreate {
		planOpts.SkipPostCreateReason = "skipped on request"
	}
	if opts.SkipPostAttach {
		planOpts.SkipPostAttachReason = "skipped on request"
	}
	plan := lifecycle.PlanForUp(sess.Config, planOpts)

	executor := lifecycle.NewExecutor(sess.Provider, sess.Events)
	outcome, err := executor.Execute(cmd.Context(), sess.Config, plan)
	if err != nil {
		return err
	}

	name, err := outcome.Container.Identifier()
	if err != nil {
		name = sess.Config.ProjectName
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderer.Success(
		fmt.Sprintf("Devcontainer %s is running", name)))
	return nil
}
