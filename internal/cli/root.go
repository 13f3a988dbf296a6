// Package cli implements the planmesh command tree.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/planmesh"
	"github.com/hupe1980/planmesh/config"
)

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFrom returns the config loaded by the root command, or the defaults
// when a subcommand runs without it.
func configFrom(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
		return cfg
	}
	return config.DefaultConfig()
}

// NewRootCmd builds the planmesh command tree.
func NewRootCmd(version string) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "planmesh",
		Short:        "planmesh - meal, shopping and travel planning assistant",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (env overrides: PLANMESH_*)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newTasksCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newConfigCmd())

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}

	return cmd
}

// open builds a PlanMesh from the command's config.
func open(cmd *cobra.Command, optFns ...func(o *planmesh.Options)) (*planmesh.PlanMesh, error) {
	return planmesh.FromConfig(cmd.Context(), configFrom(cmd.Context()), optFns...)
}
