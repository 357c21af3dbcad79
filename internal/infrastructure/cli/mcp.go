package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	inframcp "github.com/felixgeelhaar/sprintlens/internal/infrastructure/mcp"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the SprintLens MCP server",
	Run: func(cmd *cobra.Command, args []string) {
		if os.Getenv("SPRINTLENS_SKIP_MCP_START") == "true" {
			return
		}
		cwd, _ := os.Getwd()
		server, err := inframcp.NewServer(cwd)
		if err != nil {
			fmt.Fprintln(os.Stderr, MapError(err))
			os.Exit(1)
		}
		switch strings.ToLower(mcpTransport) {
		case "stdio", "":
			err = server.StartStdio()
		case "http":
			err = server.StartHTTP(mcpAddr)
		case "ws", "websocket":
			err = server.StartWebSocket(mcpAddr)
		default:
			err = fmt.Errorf("unsupported transport: %s", mcpTransport)
		}
		if err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http, ws)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8080", "Address for http/ws transports")
	RootCmd.AddCommand(mcpCmd)
}
