package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/quickdeck/quickdeck/color"
	"github.com/quickdeck/quickdeck/config"
	"github.com/quickdeck/quickdeck/constant"
	"github.com/quickdeck/quickdeck/icon"
	"github.com/quickdeck/quickdeck/key"
	"github.com/quickdeck/quickdeck/style"
	"github.com/quickdeck/quickdeck/volume"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CheckDependencies exits when the playback engine is not installed.
func CheckDependencies() {
	binary := viper.GetString(key.PlayerBinary)
	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependencyError(binary)
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The playback engine '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCmd reports whether each external dependency is usable.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the playback engine, the system mixer and the equalizer driver file",
	Run: func(cmd *cobra.Command, args []string) {
		ok := func(name, detail string) {
			cmd.Printf("%s %s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Bold(name), style.Faint(detail))
		}
		bad := func(name string, err error) {
			cmd.Printf("%s %s %s\n", style.Fg(color.Red)(icon.Get(icon.Fail)), style.Bold(name), err)
		}

		binary := viper.GetString(key.PlayerBinary)
		if path, err := exec.LookPath(binary); err != nil {
			bad("engine", err)
		} else {
			ok("engine", path)
		}

		mixer := volume.NewMixer()
		if level, err := mixer.Get(); err != nil {
			bad("mixer", err)
		} else {
			ok("mixer", fmt.Sprintf("%s at %d%%", mixer.Name(), level))
		}

		if !viper.GetBool(key.EqualizerEnable) {
			cmd.Printf("%s %s %s\n", style.Fg(color.Yellow)(icon.Get(icon.Warn)), style.Bold("equalizer"), "disabled")
			return
		}
		if p, err := loadEqualizer(); err != nil {
			bad("equalizer", err)
		} else {
			ok("equalizer", fmt.Sprintf("%s (%s)", config.EqualizerPath(), p))
		}
	},
}
