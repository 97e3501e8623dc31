package constant

// runtime.GOOS values with platform-specific behavior: mixer helpers, engine install hints and
// the equalizer driver location.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)
