package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/docchat-app/docchat/internal/auth"
	"github.com/docchat-app/docchat/internal/util"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		gw := newGateway(cfg, st)

		emailPrompt := promptui.Prompt{
			Label: "Email",
			Validate: func(s string) error {
				if !util.ValidEmail(s) {
					return errors.New("Email không hợp lệ")
				}
				return nil
			},
		}
		email, err := emailPrompt.Run()
		if err != nil {
			return fmt.Errorf("email prompt: %w", err)
		}

		passwordPrompt := promptui.Prompt{
			Label: "Mật khẩu",
			Mask:  '*',
			Validate: func(s string) error {
				if s == "" {
					return errors.New("Mật khẩu không được để trống")
				}
				return nil
			},
		}
		password, err := passwordPrompt.Run()
		if err != nil {
			return fmt.Errorf("password prompt: %w", err)
		}

		user, err := gw.SignIn(cmd.Context(), email, password)
		if err != nil {
			return errors.New(auth.LoginMessage(err))
		}

		name := user.Username
		if name == "" {
			name = user.Email
		}
		fmt.Printf("Đăng nhập thành công! Xin chào, %s.\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
