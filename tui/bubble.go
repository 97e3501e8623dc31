package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/quickdeck/quickdeck/deck"
	"github.com/quickdeck/quickdeck/engine"
	"github.com/quickdeck/quickdeck/internal/ui"
	"github.com/quickdeck/quickdeck/style"
	"github.com/quickdeck/quickdeck/util"
	"github.com/quickdeck/quickdeck/volume"
)

// Approximate terminal cell size in pixels, used to size the image viewport.
const (
	cellWidth  = 8
	cellHeight = 16
)

// statefulBubble holds the control surface state. Playback state is never pushed into it:
// it re-reads the controller snapshot on every tick.
type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	deck   *deck.Deck
	status engine.Status

	progressC progress.Model
	helpC     help.Model
	inputC    textinput.Model
	historyC  list.Model
	notifier  *ui.Model

	width, height  int
	startupWarning string

	options *Options
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// refresh re-reads the controller snapshot.
func (b *statefulBubble) refresh() {
	b.status = b.deck.Snapshot()
	b.keymap.setViewing(b.status.State == engine.Viewing)
}

// resize propagates terminal dimension changes to all child component models.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y

	b.historyC.SetSize(width-xx, height-yy)
	b.historyC.Help.Width = width - xx

	b.progressC.Width = b.width
	b.inputC.Width = b.width
	b.helpC.Width = b.width
	b.notifier.SetWidth(b.width)

	b.deck.SetSurface(surfaceRect(width))
	b.deck.SetViewport(b.width*cellWidth, panelLines*cellHeight)
}

// surfaceRect is the on-screen area of the playback panel, padding included.
func surfaceRect(width int) volume.Rect {
	top, _, bottom, _ := paddingStyle.GetPadding()
	return volume.Rect{X: 0, Y: 0, Width: width, Height: top + panelLines + bottom}
}

// newBubble performs a complete initialization of the application's primary UI model.
func newBubble(d *deck.Deck, options *Options) *statefulBubble {
	bubble := statefulBubble{
		keymap:   newStatefulKeymap(),
		deck:     d,
		notifier: &ui.Model{},
		options:  options,
	}

	bubble.helpC = help.New()
	bubble.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	bubble.inputC = textinput.New()
	bubble.inputC.Placeholder = "Path to an audio, video or image file"
	bubble.inputC.CharLimit = 4096
	bubble.inputC.Prompt = "> "

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(style.AccentColor).
		Foreground(style.AccentColor).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

	bubble.historyC = list.New([]list.Item{}, delegate, 0, 0)
	bubble.historyC.KeyMap = bubble.keymap.forList()
	bubble.historyC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
	bubble.historyC.Title = "History"
	bubble.historyC.Styles.Title = lipgloss.NewStyle().Foreground(style.Base).Background(style.Yellow).Padding(0, 1)
	bubble.historyC.Styles.NoItems = paddingStyle
	bubble.historyC.SetShowPagination(false)
	bubble.historyC.SetShowStatusBar(false)
	bubble.historyC.SetFilteringEnabled(false)

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	bubble.setState(playerState)
	bubble.refresh()

	return &bubble
}
