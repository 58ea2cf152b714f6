package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devcgo/devc/internal/config"
	"github.com/devcgo/devc/internal/lifecycle"
)

// PlanOptions holds flags for the plan command
type PlanOptions struct {
	ProjectName    string
	Image          string
	SkipPostCreate bool
	SkipPostAttach bool
	JSON           bool
}

// NewPlanCmd creates the plan command
func NewPlanCmd(app *App) *cobra.Command {
	opts := PlanOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the lifecycle steps an up run would execute",
		Long: `Plan resolves the configuration and prints the steps up would take,
without touching the container engine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Plan(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ProjectName, "project-name", "", "Override the project name")
	cmd.Flags().StringVar(&opts.Image, "image", "", "Override the image reference")
	cmd.Flags().BoolVar(&opts.SkipPostCreate, "skip-post-create", false, "Plan with the postCreateCommand hook skipped")
	cmd.Flags().BoolVar(&opts.SkipPostAttach, "skip-post-attach", false, "Plan with the postAttachCommand hook skipped")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the plan as JSON")

	return cmd
}

// Plan prints the planned lifecycle steps.
func (a *App) Plan(cmd *cobra.Command, opts PlanOptions) error {
	cfg, err := a.resolveConfig(config.Overrides{
		ProjectName:    opts.ProjectName,
		ImageReference: opts.Image,
	})
	if err != nil {
		return err
	}

	planOpts := lifecycle.PlanOptions{}
	if opts.SkipPostCreate {
		planOpts.SkipPostCreateReason = "skipped on request"
	}
	if opts.SkipPostAttach {
		planOpts.SkipPostAttachReason = "skipped on request"
	}
	plan := lifecycle.PlanForUp(cfg, planOpts)

	if opts.JSON {
		encoded, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("encode plan: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		return nil
	}

	renderer := NewRenderer(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), renderer.FormatPlan(cfg.ProjectName, plan))
	return nil
}
