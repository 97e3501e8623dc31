package backend

import (
	"fmt"
	"strconv"
)

// CommandKind enumerates the transport commands an engine accepts.
type CommandKind int

const (
	CmdPlay CommandKind = iota + 1
	CmdPause
	CmdTogglePause
	CmdSeek
	CmdSetVolume
	CmdAddVolume
	CmdSetMute
	CmdToggleMute
	CmdLoadNext
	CmdStop
)

// Command is a single transport instruction. Only the fields relevant to Kind are read.
type Command struct {
	Kind  CommandKind
	Value float64
	Flag  bool
	Path  string
}

func Play() Command                  { return Command{Kind: CmdPlay} }
func Pause() Command                 { return Command{Kind: CmdPause} }
func TogglePause() Command           { return Command{Kind: CmdTogglePause} }
func SeekTo(seconds float64) Command { return Command{Kind: CmdSeek, Value: seconds} }
func SetVolume(percent int) Command  { return Command{Kind: CmdSetVolume, Value: float64(percent)} }
func AddVolume(delta int) Command    { return Command{Kind: CmdAddVolume, Value: float64(delta)} }
func SetMute(muted bool) Command     { return Command{Kind: CmdSetMute, Flag: muted} }
func ToggleMute() Command            { return Command{Kind: CmdToggleMute} }
func LoadNext(path string) Command   { return Command{Kind: CmdLoadNext, Path: path} }
func Stop() Command                  { return Command{Kind: CmdStop} }

func (c Command) String() string {
	switch c.Kind {
	case CmdPlay:
		return "play"
	case CmdPause:
		return "pause"
	case CmdTogglePause:
		return "toggle-pause"
	case CmdSeek:
		return "seek " + strconv.FormatFloat(c.Value, 'f', 2, 64)
	case CmdSetVolume:
		return fmt.Sprintf("set-volume %d", int(c.Value))
	case CmdAddVolume:
		return fmt.Sprintf("add-volume %+d", int(c.Value))
	case CmdSetMute:
		return fmt.Sprintf("set-mute %t", c.Flag)
	case CmdToggleMute:
		return "toggle-mute"
	case CmdLoadNext:
		return "load-next " + c.Path
	case CmdStop:
		return "stop"
	default:
		return fmt.Sprintf("command(%d)", int(c.Kind))
	}
}

// ipcArgs translates c into an mpv JSON IPC command array.
func (c Command) ipcArgs() ([]interface{}, error) {
	switch c.Kind {
	case CmdPlay:
		return []interface{}{"set_property", "pause", false}, nil
	case CmdPause:
		return []interface{}{"set_property", "pause", true}, nil
	case CmdTogglePause:
		return []interface{}{"cycle", "pause"}, nil
	case CmdSeek:
		return []interface{}{"seek", c.Value, "absolute"}, nil
	case CmdSetVolume:
		return []interface{}{"set_property", "volume", clampVolume(c.Value)}, nil
	case CmdAddVolume:
		return []interface{}{"add", "volume", c.Value}, nil
	case CmdSetMute:
		return []interface{}{"set_property", "mute", c.Flag}, nil
	case CmdToggleMute:
		return []interface{}{"cycle", "mute"}, nil
	case CmdLoadNext:
		// append-play keeps the current item and lets gapless playback roll into the next one.
		return []interface{}{"loadfile", c.Path, "append-play"}, nil
	case CmdStop:
		return []interface{}{"stop"}, nil
	default:
		return nil, fmt.Errorf("unknown command kind %d", int(c.Kind))
	}
}

func clampVolume(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > MaxVolume:
		return MaxVolume
	default:
		return v
	}
}
