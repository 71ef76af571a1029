package server

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwantia/docsync/internal/agent"
	config "github.com/mwantia/docsync/internal/config/server"
)

func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the DocSync agent",
		Long: `Start the DocSync agent.

The agent opens the configured metadata and blob stores, applies pending
schema migrations and serves the document API until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			return agent.NewAgent(cfg).Serve(cmd.Context())
		},
	}

	return cmd
}
