package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient(cmd)
		if err := client.Health(cmd.Context()); err != nil {
			return fmt.Errorf("backend %s is not healthy: %w", client.BaseURL(), err)
		}
		fmt.Printf("Backend %s is healthy.\n", client.BaseURL())
		return nil
	},
}
