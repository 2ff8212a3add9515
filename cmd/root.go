package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Terminal client for the document-chat service",
	Long: `docchat talks to the document-chat backend from the terminal:
sign in, pick a chatbot persona, chat, upload documents for
question-answering, and browse past conversations. A browser UI is
available locally via 'docchat serve'.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.json", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
