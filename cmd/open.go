package cmd

import (
	"context"
	"path/filepath"
	"time"

	"github.com/quickdeck/quickdeck/config"
	"github.com/quickdeck/quickdeck/listener"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(openCmd)
	openCmd.Flags().StringP("address", "a", "", "Address of the running instance")
}

// openCmd hands a file to an already running instance.
var openCmd = &cobra.Command{
	Use:   "open [file]",
	Short: "Play a file in the running quickdeck instance",
	Long: `Play a file in the running quickdeck instance.
Suitable as an "open with" target for file managers.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, err := filepath.Abs(args[0])
		handleErr(err)

		address, _ := cmd.Flags().GetString("address")
		if address == "" {
			address = config.ListenerAddress()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		handleErr(listener.Send(ctx, address, path))
		printSuccess("sent %s", filepath.Base(path))
	},
}
