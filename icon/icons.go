package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Warn
	Info
	Play
	Pause
	Stop
	Loading
	Audio
	Video
	Image
	Volume
	Mute
	Equalizer
	PopOut
	Embedded
	Mark
)

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "✅",
		nerd:    "\uf00c",
		plain:   "✓",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Fail: {
		emoji:   "❌",
		nerd:    "\uf00d",
		plain:   "✗",
		kaomoji: "(×_×)",
		squares: "🟥",
	},
	Warn: {
		emoji:   "⚠️",
		nerd:    "\uf071",
		plain:   "!",
		kaomoji: "(・_・ヾ",
		squares: "🟨",
	},
	Info: {
		emoji:   "ℹ️",
		nerd:    "\uf05a",
		plain:   "i",
		kaomoji: "(・ω・)",
		squares: "🟦",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "\uf04b",
		plain:   "▶",
		kaomoji: "(ﾉ◕ヮ◕)ﾉ",
		squares: "🟩",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "\uf04c",
		plain:   "‖",
		kaomoji: "(￣ー￣)",
		squares: "🟨",
	},
	Stop: {
		emoji:   "⏹️",
		nerd:    "\uf04d",
		plain:   "■",
		kaomoji: "(－_－)",
		squares: "⬛",
	},
	Loading: {
		emoji:   "⏳",
		nerd:    "\uf110",
		plain:   "…",
		kaomoji: "(・・ )?",
		squares: "🟪",
	},
	Audio: {
		emoji:   "🎵",
		nerd:    "\uf001",
		plain:   "♪",
		kaomoji: "♪(´ε` )",
		squares: "🟦",
	},
	Video: {
		emoji:   "🎬",
		nerd:    "\uf008",
		plain:   "▣",
		kaomoji: "(⌐■_■)",
		squares: "🟫",
	},
	Image: {
		emoji:   "🖼️",
		nerd:    "\uf03e",
		plain:   "▤",
		kaomoji: "(◕‿◕)",
		squares: "🟧",
	},
	Volume: {
		emoji:   "🔊",
		nerd:    "\uf028",
		plain:   "vol",
		kaomoji: "ヽ(°〇°)ﾉ",
		squares: "🟩",
	},
	Mute: {
		emoji:   "🔇",
		nerd:    "\uf026",
		plain:   "mute",
		kaomoji: "(－‸ლ)",
		squares: "⬜",
	},
	Equalizer: {
		emoji:   "🎚️",
		nerd:    "\uf1de",
		plain:   "eq",
		kaomoji: "┌( ಠ_ಠ)┘",
		squares: "🟪",
	},
	PopOut: {
		emoji:   "🪟",
		nerd:    "\uf08e",
		plain:   "[^]",
		kaomoji: "＼(^o^)／",
		squares: "🔲",
	},
	Embedded: {
		emoji:   "📺",
		nerd:    "\uf108",
		plain:   "[=]",
		kaomoji: "(ｏ・_・)ノ",
		squares: "🔳",
	},
	Mark: {
		emoji:   "👉",
		nerd:    "\uf0a4",
		plain:   ">",
		kaomoji: "(☞ﾟヮﾟ)☞",
		squares: "▪️",
	},
}
