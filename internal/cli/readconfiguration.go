package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/devcgo/devc/internal/config"
)

// NewReadConfigurationCmd creates the read-configuration command
func NewReadConfigurationCmd(app *App) *cobra.Command {
	opts := struct {
		projectName string
		image       string
	}{}

	cmd := &cobra.Command{
		Use:   "read-configuration",
		Short: "Resolve and print the devcontainer configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.resolveConfig(config.Overrides{
				ProjectName:    opts.projectName,
				ImageReference: opts.image,
			})
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("encode configuration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.projectName, "project-name", "", "Override the project name")
	cmd.Flags().StringVar(&opts.image, "image", "", "Override the image reference")

	return cmd
}

// resolveConfig resolves the configuration without wiring a provider.
// Commands that never touch the engine use this path so they work on
// machines with no container engine installed.
//
// The workspace flag becomes a resolver override only when the user set
// it explicitly; otherwise a workspaceFolder in the document keeps its
// place in the precedence chain.
func (a *App) resolveConfig(overrides config.Overrides) (*config.ResolvedConfig, error) {
	workspace, err := filepath.Abs(a.workspaceFolder)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace folder: %w", err)
	}

	source := config.WorkspaceSource(workspace)
	if a.configFile != "" {
		source = config.FileSource(a.configFile)
	}
	if overrides.WorkspaceFolder == "" && a.workspaceOverridden() {
		overrides.WorkspaceFolder = workspace
	}
	return config.Resolve(source, overrides)
}
