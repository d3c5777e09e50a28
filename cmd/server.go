package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tuba-naf/teamtask-cli/internal"
)

var serverCmd = &cobra.Command{
	Use:   "server [url]",
	Short: "Show or set the configured server URL",
	Long: `Without arguments, print the server URL currently in effect. With a
URL argument, save it to ~/.teamtask/config.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			fmt.Println(e.config.ServerURL)
			return nil
		}

		cfg := &internal.Config{ServerURL: args[0]}
		if err := internal.SaveConfig(e.profileDir, cfg); err != nil {
			return err
		}
		fmt.Println(okStyle.Render("Server set to"), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
