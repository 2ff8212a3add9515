package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List chatbot personas and mark the active one",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		current, err := st.ChatFaceIndex()
		if err != nil {
			return err
		}
		for i, bot := range cfg.Chatbots {
			marker := " "
			if i == current {
				marker = "*"
			}
			fmt.Printf("%s %d. %s (bot_id=%s)\n", marker, bot.ID, bot.Name, bot.BotID)
		}
		return nil
	},
}

var personasSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick the persona used by 'docchat chat'",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		names := make([]string, len(cfg.Chatbots))
		for i, bot := range cfg.Chatbots {
			names[i] = bot.Name
		}
		picker := promptui.Select{
			Label: "Chọn chatbot",
			Items: names,
		}
		idx, _, err := picker.Run()
		if err != nil {
			return fmt.Errorf("persona selection: %w", err)
		}

		chosen := cfg.Chatbots[idx]
		if err := st.SetChatFace(chosen.ID); err != nil {
			return err
		}
		fmt.Printf("Đã chọn %s.\n", chosen.Name)
		return nil
	},
}

func init() {
	personasCmd.AddCommand(personasSelectCmd)
	rootCmd.AddCommand(personasCmd)
}
