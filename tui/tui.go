// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/quickdeck/quickdeck/config"
	"github.com/quickdeck/quickdeck/deck"
	"github.com/quickdeck/quickdeck/internal/ui"
	"github.com/quickdeck/quickdeck/key"
	"github.com/quickdeck/quickdeck/log"
	"github.com/spf13/viper"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	// Path is loaded on startup when set.
	Path string
	// Resume continues Path from its history position.
	Resume bool
	// Listen accepts files from other processes.
	Listen bool
}

// Run initializes and executes the primary Bubble Tea application loop.
func Run(options *Options) error {
	dopts := deck.FromConfig()
	dopts.Listener = dopts.Listener && options.Listen

	d := deck.New(dopts)
	defer func() {
		if err := d.Close(); err != nil {
			log.Warn(err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bubble := newBubble(d, options)
	if err := d.Start(ctx); err != nil {
		log.Warn(err)
		bubble.startupWarning = err.Error()
	}

	program := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithMouseCellMotion())

	config.Watch(func() {
		d.SetSteps(viper.GetInt(key.VolumePlayerStep), viper.GetInt(key.VolumeSystemStep))
		program.Send(ui.NotifyMsg{Level: ui.Info, Text: fmt.Sprintf("config reloaded from %s", config.Path())})
	})

	_, err := program.Run()
	return err
}
