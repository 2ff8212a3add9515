package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docchat-app/docchat/internal/docapi"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question over the uploaded documents",
	Args:  cobra.MinimumNArgs(1),
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

		question := strings.Join(args, " ")
		answer, err := newDocClient(cfg).Chat(cmd.Context(), question)
		if err != nil {
			var apiErr *docapi.Error
			if errors.As(err, &apiErr) {
				return fmt.Errorf("Không thể xử lý câu hỏi: %s", apiErr.Detail)
			}
			return fmt.Errorf("❌ Lỗi kết nối: %v", err)
		}

		fmt.Println(answer.Answer)
		if verbose {
			fmt.Printf("(context used: %v, chunks: %d)\n", answer.ContextUsed, answer.ChunksCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
