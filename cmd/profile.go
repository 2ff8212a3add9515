package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"whoami"},
	Short:   "Show the signed-in user's profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		gw := newGateway(cfg, st)
		if err := requireAuth(gw); err != nil {
			return err
		}

		user, err := gw.CurrentUser(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}

		fmt.Printf("Email:    %s\n", orNA(user.Email))
		fmt.Printf("Username: %s\n", orNA(user.Username))
		fmt.Printf("Phone:    %s\n", orNA(user.Phone))
		return nil
	},
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
