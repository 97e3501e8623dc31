// Package deck assembles the playback controller with its collaborators: the engine factory,
// the equalizer driver file, playback history, volume routing, the open-with listener and
// the MPRIS bridge.
package deck

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/quickdeck/quickdeck/backend"
	"github.com/quickdeck/quickdeck/config"
	"github.com/quickdeck/quickdeck/engine"
	"github.com/quickdeck/quickdeck/equalizer"
	"github.com/quickdeck/quickdeck/history"
	"github.com/quickdeck/quickdeck/key"
	"github.com/quickdeck/quickdeck/listener"
	"github.com/quickdeck/quickdeck/log"
	"github.com/quickdeck/quickdeck/mpris"
	"github.com/quickdeck/quickdeck/volume"
	"github.com/spf13/viper"
)

// Options selects the collaborators. Nil fields are left out.
type Options struct {
	Engine    engine.Options
	Factory   backend.Factory
	Presenter engine.Presenter
	Router    volume.Router
	Mixer     volume.Mixer

	// Equalizer is nil when the driver file is not managed.
	Equalizer *equalizer.Writer
	// Preset is applied on startup. Empty keeps what the driver file holds.
	Preset string

	ListenerAddress string
	ListenerConns   int
	Listener        bool
	MPRIS           bool
}

// FromConfig builds options from the current configuration.
func FromConfig() Options {
	opts := Options{
		Engine:          config.Engine(),
		Factory:         backend.MPVFactory(config.Backend()),
		Router:          config.Router(),
		Mixer:           volume.NewMixer(),
		Preset:          viper.GetString(key.EqualizerPreset),
		ListenerAddress: config.ListenerAddress(),
		ListenerConns:   viper.GetInt(key.ListenerMaxConnections),
		Listener:        viper.GetBool(key.ListenerEnable),
		MPRIS:           viper.GetBool(key.MPRISEnable),
	}
	opts.Engine.History = history.Store{}
	if viper.GetBool(key.EqualizerEnable) {
		opts.Equalizer = equalizer.NewWriter(config.EqualizerPath())
	}
	return opts
}

// Deck owns a controller and everything attached to it.
type Deck struct {
	*engine.Controller

	mixer volume.Mixer
	eq    *equalizer.Writer

	mu     sync.Mutex
	router volume.Router

	opts     Options
	listener *listener.Server
	bridge   *mpris.Adapter
}

// New builds the controller. Nothing is started until Start.
func New(opts Options) *Deck {
	var eq engine.Equalizer
	if opts.Equalizer != nil {
		eq = opts.Equalizer
	}

	mixer := opts.Mixer
	if mixer == nil {
		mixer = volume.NewMixer()
	}

	return &Deck{
		Controller: engine.New(opts.Engine, opts.Factory, eq, opts.Presenter),
		mixer:      mixer,
		eq:         opts.Equalizer,
		router:     opts.Router,
		opts:       opts,
	}
}

// Start restores the equalizer and brings up the listener and the MPRIS bridge.
// Failures are returned joined; the controller stays usable either way.
func (d *Deck) Start(ctx context.Context) error {
	var errs []error

	if d.eq != nil {
		if err := d.restoreEqualizer(); err != nil {
			errs = append(errs, err)
		}
	}

	if d.opts.Listener {
		if err := d.startListener(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if d.opts.MPRIS {
		bridge, err := mpris.New(d.Controller)
		if err != nil {
			errs = append(errs, fmt.Errorf("mpris: %w", err))
		} else {
			d.bridge = bridge
		}
	}

	return errors.Join(errs...)
}

func (d *Deck) restoreEqualizer() error {
	if d.opts.Preset != "" {
		_, err := d.ApplyPreset(d.opts.Preset)
		return err
	}
	p, err := d.eq.Load()
	if err != nil {
		return err
	}
	log.Infof("equalizer: %s", p)
	return nil
}

func (d *Deck) startListener(ctx context.Context) error {
	srv, err := listener.New(d.opts.ListenerAddress, d.opts.ListenerConns, d.PlayInEngine)
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}
	d.listener = srv

	go func() {
		if err := srv.Serve(ctx); err != nil {
			log.Warnf("listener: %s", err)
		}
	}()
	return nil
}

// ListenerAddr returns the bound open-with address, or "" when the listener is off.
func (d *Deck) ListenerAddr() string {
	if d.listener == nil {
		return ""
	}
	return d.listener.Addr().String()
}

// Mixer returns the OS volume control.
func (d *Deck) Mixer() volume.Mixer {
	return d.mixer
}

// SetSurface records where the playback surface is drawn, in pointer coordinates.
func (d *Deck) SetSurface(r volume.Rect) {
	d.mu.Lock()
	d.router = d.router.WithSurface(r)
	d.mu.Unlock()
}

// SetSteps replaces the wheel step sizes, keeping the surface.
func (d *Deck) SetSteps(player, system int) {
	d.mu.Lock()
	d.router = volume.NewRouter(player, system).WithSurface(d.router.Surface)
	d.mu.Unlock()
}

// Wheel routes one wheel notch to the player or the OS volume.
func (d *Deck) Wheel(ev volume.WheelEvent) (volume.Decision, error) {
	d.mu.Lock()
	router := d.router
	d.mu.Unlock()

	decision := router.Route(ev, d.HasSession())
	switch decision.Target {
	case volume.Player:
		return decision, d.AdjustVolume(decision.Delta)
	case volume.System:
		_, err := d.mixer.Adjust(decision.Delta)
		return decision, err
	default:
		return decision, nil
	}
}

// Close stops playback and releases the listener and the bus name.
func (d *Deck) Close() error {
	var errs []error
	if d.listener != nil {
		errs = append(errs, d.listener.Close())
	}
	if d.bridge != nil {
		errs = append(errs, d.bridge.Close())
	}
	errs = append(errs, d.Controller.Close())
	return errors.Join(errs...)
}
