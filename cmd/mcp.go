package cmd

import (
	"github.com/huangsam/cashtrend/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the cashtrend MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents run trend, forecast,
anomaly, seasonality and overall analyses on series and transactions they supply.

Logs go to stderr so stdout stays reserved for the protocol.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
