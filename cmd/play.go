package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/quickdeck/quickdeck/color"
	"github.com/quickdeck/quickdeck/deck"
	"github.com/quickdeck/quickdeck/engine"
	"github.com/quickdeck/quickdeck/history"
	"github.com/quickdeck/quickdeck/icon"
	"github.com/quickdeck/quickdeck/key"
	"github.com/quickdeck/quickdeck/log"
	"github.com/quickdeck/quickdeck/style"
	"github.com/quickdeck/quickdeck/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().BoolP("resume", "r", false, "Continue from where the file was last stopped")
	playCmd.Flags().Float64P("start", "s", 0, "Start position in seconds")
	playCmd.Flags().BoolP("paused", "p", false, "Load the file without starting playback")
	playCmd.MarkFlagsMutuallyExclusive("resume", "start")
}

// playCmd plays a single file without the TUI until it ends or is interrupted.
var playCmd = &cobra.Command{
	Use:     "play [file]",
	Short:   "Play a file headless until it ends",
	Example: "  quickdeck play ~/Music/track.flac --resume",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		path, err := filepath.Abs(args[0])
		handleErr(err)

		opts := engine.LoadOptions{
			Autoplay: viper.GetBool(key.PlayerAutoplay) && !lo.Must(cmd.Flags().GetBool("paused")),
			StartAt:  lo.Must(cmd.Flags().GetFloat64("start")),
		}
		if lo.Must(cmd.Flags().GetBool("resume")) {
			if at, ok := history.Resume(path); ok {
				opts.StartAt = at
			}
		}

		dopts := deck.FromConfig()
		dopts.Listener = false
		d := deck.New(dopts)
		defer func() {
			fmt.Println()
			if err := d.Close(); err != nil {
				log.Warn(err)
			}
		}()

		if err := d.Start(ctx); err != nil {
			log.Warn(err)
		}

		if err := d.Load(ctx, path, opts); err != nil && !errors.Is(err, engine.ErrLoadCancelled) {
			handleErr(err)
		}

		handleErr(watch(ctx, d.Controller))
	},
}

// watch prints a status line once per second until playback stops.
func watch(ctx context.Context, c *engine.Controller) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	width := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-c.Notices():
			if n.Level == engine.Error {
				return errors.New(n.Message)
			}
			fmt.Printf("\r%s %s\n", icon.Get(icon.Warn), n.Message)
		case <-ticker.C:
			status := c.Snapshot()
			switch status.State {
			case engine.Idle, engine.Failed:
				return nil
			}

			line := statusLine(status)
			fmt.Printf("\r%s%s", line, strings.Repeat(" ", max(width-len(line), 0)))
			width = len(line)
		}
	}
}

func statusLine(s engine.Status) string {
	name := ""
	if s.Item != nil {
		name = s.Item.Name()
	}

	stateIcon := icon.Get(icon.Play)
	switch s.State {
	case engine.Paused:
		stateIcon = icon.Get(icon.Pause)
	case engine.Loading:
		stateIcon = icon.Get(icon.Loading)
	case engine.Viewing:
		return fmt.Sprintf("%s %s %dx%d", icon.Get(icon.Image), name, s.Image.Width, s.Image.Height)
	}

	return fmt.Sprintf("%s %s %s / %s %s",
		stateIcon,
		style.Fg(color.Purple)(name),
		util.Clock(s.Transport.Position),
		util.Clock(s.Transport.Duration),
		style.Faint(fmt.Sprintf("vol %d%%", s.Transport.Volume)),
	)
}
