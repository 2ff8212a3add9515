package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/docchat-app/docchat/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing document question-answering, upload and history tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "docchat MCP server started on stdio (service=%s)\n", cfg.DocAPI.Host+cfg.DocAPI.Base)

		srv := mcpserver.NewServer(newDocClient(cfg))
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
