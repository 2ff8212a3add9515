package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyPick  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past document questions and answers",
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

		entries, err := newDocClient(cfg).History(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("Lỗi tải lịch sử: %v", err)
		}
		if len(entries) == 0 {
			fmt.Println("Chưa có lịch sử chat")
			return nil
		}

		// Picking an entry re-asks its question, the way selecting a
		// history item put the question back into the input box.
		if historyPick {
			questions := make([]string, len(entries))
			for i, e := range entries {
				questions[i] = e.Question
			}
			picker := promptui.Select{
				Label: "Chọn câu hỏi",
				Items: questions,
				Size:  historyLimit,
			}
			idx, _, err := picker.Run()
			if err != nil {
				return fmt.Errorf("history selection: %w", err)
			}
			answer, err := newDocClient(cfg).Chat(cmd.Context(), entries[idx].Question)
			if err != nil {
				return fmt.Errorf("❌ Lỗi kết nối: %v", err)
			}
			fmt.Println(answer.Answer)
			return nil
		}

		for _, e := range entries {
			fmt.Printf("[%s] %s\n    %s\n", e.CreatedAt, e.Question, e.Answer)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of entries to fetch")
	historyCmd.Flags().BoolVar(&historyPick, "pick", false, "pick one entry interactively")
	rootCmd.AddCommand(historyCmd)
}
