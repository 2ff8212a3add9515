package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/docchat-app/docchat/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the active persona",
	Long: `Starts an interactive conversation with the currently selected
persona. Questions are routed by the persona's bot id to either the
document-backed endpoint or one of the dedicated model endpoints.
Type /quit to leave.`,
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

		index, err := st.ChatFaceIndex()
		if err != nil {
			return err
		}
		persona := cfg.PersonaAt(index)

		session := &chat.Session{
			Persona: persona,
			Backend: newAPIClient(cfg, gw),
			Out:     os.Stdout,
			SignOut: gw.SignOut,
			Typing:  typingIndicator,
		}
		session.Greet()

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := scanner.Text()
			if line == "/quit" || line == "/exit" {
				break
			}
			if err := session.Send(cmd.Context(), line); err != nil {
				if errors.Is(err, chat.ErrSignedOut) {
					fmt.Println("Phiên đăng nhập đã hết hạn. Vui lòng đăng nhập lại.")
					return nil
				}
				return err
			}
		}
		return scanner.Err()
	},
}

// typingIndicator shows an indeterminate spinner until its stop
// function runs.
func typingIndicator() func() {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Đang trả lời..."),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(os.Stderr),
	)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bar.Add(1)
			}
		}
	}()
	return func() {
		close(done)
		bar.Clear()
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
