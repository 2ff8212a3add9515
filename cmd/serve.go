package cmd

import (
	"github.com/spf13/cobra"

	"github.com/docchat-app/docchat/internal/web"
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser chat UI locally",
	Long: `Starts a local web server hosting the chat interface: sign in,
pick a persona, chat over WebSocket, upload documents and browse
history from the browser.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		gw := newGateway(cfg, st)

		srv := web.New(
			web.Config{Port: servePort, AllowAll: serveAllowAll},
			cfg, gw, newAPIClient(cfg, gw), newDocClient(cfg), st,
		)
		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port to listen on")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
