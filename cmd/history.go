package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quickdeck/quickdeck/color"
	"github.com/quickdeck/quickdeck/history"
	"github.com/quickdeck/quickdeck/icon"
	"github.com/quickdeck/quickdeck/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Number of entries to show, 0 for all")
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
}

// historyCmd lists where recently played files were stopped.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently played files and where they were stopped",
	Run: func(cmd *cobra.Command, args []string) {
		entries, err := history.Recent(lo.Must(cmd.Flags().GetInt("limit")))
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(os.Stdout).Encode(entries))
			return
		}

		if len(entries) == 0 {
			fmt.Println(style.Faint("No history"))
			return
		}

		for _, e := range entries {
			mark := icon.Get(icon.Play)
			if e.Finished() {
				mark = icon.Get(icon.Success)
			}
			fmt.Printf("%s %s %s\n",
				mark,
				e,
				style.Faint(fmt.Sprintf("%.0f%%  %s", e.Progress(), e.PlayedAt.Format("2006-01-02 15:04"))),
			)
		}
	},
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove [file]",
	Short: "Forget the position of a file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, err := filepath.Abs(args[0])
		handleErr(err)
		handleErr(history.Remove(path))
		printSuccess("forgot %s", style.Fg(color.Purple)(filepath.Base(path)))
	},
}
