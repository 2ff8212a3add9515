package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		gw := newGateway(cfg, st)

		if err := gw.SignOut(cmd.Context()); err != nil {
			debugf("revoke: %v", err)
		}
		fmt.Println("Đã đăng xuất.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
