// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Playback Engine - these keys configure the external playback backend process and its bounds.
const (
	PlayerBinary         = "player.binary"
	PlayerArgs           = "player.args"
	PlayerPollInterval   = "player.poll_interval_ms"
	PlayerStartupTimeout = "player.startup_timeout_ms"
	PlayerShutdownGrace  = "player.shutdown_grace_ms"
	PlayerQueryTimeout   = "player.query_timeout_ms"
	PlayerAutoplay       = "player.autoplay"
	PlayerVolume         = "player.volume"
)

// Equalizer - these keys locate the audio-correction driver configuration and the startup preset.
const (
	EqualizerEnable = "equalizer.enable"
	EqualizerPath   = "equalizer.path"
	EqualizerPreset = "equalizer.preset"
)

// Volume Routing - wheel step sizes for player-local and system output volume.
const (
	VolumePlayerStep = "volume.player_step"
	VolumeSystemStep = "volume.system_step"
)

// External Invocation - loopback "open with" listener.
const (
	ListenerEnable         = "listener.enable"
	ListenerAddress        = "listener.address"
	ListenerMaxConnections = "listener.max_connections"
)

// Desktop Integration
const (
	MPRISEnable = "mpris.enable"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment
const (
	CliColored = "cli.colored"
)
