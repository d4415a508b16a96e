package cli

import "strings"

const (
	KeyQuit    = "q"
	KeyCtrlC   = "ctrl+c"
	KeyEscape  = "esc"
	KeyUp      = "up"
	KeyUpAlt   = "k"
	KeyDown    = "down"
	KeyDownAlt = "j"
	KeyEnter   = "enter"
	KeyYes     = "y"
	KeyNo      = "n"
)

type HelpItem struct {
	Key  string
	Desc string
}

func BuildHelpText(items []HelpItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Key + " " + item.Desc
	}
	return HelpStyle.Render("  " + strings.Join(parts, "  "))
}

var (
	HelpNavUp   = HelpItem{Key: "↑/↓", Desc: "navigate"}
	HelpEnter   = HelpItem{Key: "Enter", Desc: "select"}
	HelpSubmit  = HelpItem{Key: "Enter", Desc: "next"}
	HelpEsc     = HelpItem{Key: "Esc", Desc: "back"}
	HelpQuit    = HelpItem{Key: "q", Desc: "quit"}
	HelpConfirm = HelpItem{Key: "y/n", Desc: "confirm"}
)
