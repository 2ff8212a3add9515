package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/docchat-app/docchat/internal/auth"
	"github.com/docchat-app/docchat/internal/util"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		gw := newGateway(cfg, st)

		username, err := runPrompt(promptui.Prompt{
			Label: "Tên người dùng",
			Validate: func(s string) error {
				if s == "" {
					return errors.New("Tên người dùng không được để trống")
				}
				return nil
			},
		})
		if err != nil {
			return err
		}

		email, err := runPrompt(promptui.Prompt{
			Label: "Email",
			Validate: func(s string) error {
				if s == "" {
					return errors.New("Email không được để trống")
				}
				if !util.ValidEmail(s) {
					return errors.New("Email không hợp lệ")
				}
				return nil
			},
		})
		if err != nil {
			return err
		}

		phone, err := runPrompt(promptui.Prompt{
			Label: "Số điện thoại",
			Validate: func(s string) error {
				if s == "" {
					return errors.New("Số điện thoại không được để trống")
				}
				return nil
			},
		})
		if err != nil {
			return err
		}

		password, err := runPrompt(promptui.Prompt{
			Label: "Mật khẩu",
			Mask:  '*',
			Validate: func(s string) error {
				if s == "" {
					return errors.New("Mật khẩu không được để trống")
				}
				if len(s) < 6 {
					return errors.New("Mật khẩu phải có ít nhất 6 ký tự")
				}
				return nil
			},
		})
		if err != nil {
			return err
		}

		confirmPrompt := promptui.Prompt{
			Label: "Xác nhận mật khẩu",
			Mask:  '*',
			Validate: func(s string) error {
				if s == "" {
					return errors.New("Xác nhận mật khẩu không được để trống")
				}
				return nil
			},
		}
		confirm, err := confirmPrompt.Run()
		if err != nil {
			return fmt.Errorf("prompt: %w", err)
		}
		if confirm != password {
			return errors.New("Mật khẩu không trùng khớp")
		}

		user, err := gw.SignUp(cmd.Context(), email, password, username, phone)
		if err != nil {
			return errors.New(auth.RegisterMessage(err))
		}

		fmt.Printf("Đăng ký thành công! Xin chào, %s.\n", user.Username)
		return nil
	},
}

func runPrompt(p promptui.Prompt) (string, error) {
	value, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	return value, nil
}

func init() {
	rootCmd.AddCommand(registerCmd)
}
