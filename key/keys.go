// Package key defines the configuration identifiers shared by the config
// registry and its readers.
package key

// Engine - selection and tuning of the playback engine backend.
const (
	EngineBackend = "engine.backend"
	EngineBinary  = "engine.binary"
	EngineOptions = "engine.options"
	EngineHwdec   = "engine.hwdec"
	EngineProfile = "engine.profile"
)

// Rendering - GL surface parameters.
const (
	RenderFlipY = "render.flip_y"
)

// Window - the native video window.
const (
	WindowWidth  = "window.width"
	WindowHeight = "window.height"
	WindowTitle  = "window.title"
)

// Playback - defaults applied by the CLI and the control panel.
const (
	PlayerVolume   = "player.volume"
	PlayerSeekStep = "player.seek_step"
	PlayerResume   = "player.resume"
)

// History - persisted resume positions.
const (
	HistorySave = "history.save"
)

// Logging - the application's own diagnostics, independent of the engine's msg-level.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI - non-interactive behaviour.
const (
	CliColored   = "cli.colored"
	IconsVariant = "icons.variant"
)
