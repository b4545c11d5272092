package colours

import "github.com/fatih/color"

// Status messages
var (
	Error   = color.New(color.FgRed, color.Bold)
	Success = color.New(color.FgGreen)
	Info    = color.New(color.FgBlue)
	Warning = color.New(color.FgYellow)
)

// Voice guide screens
var (
	Title    = color.New(color.FgCyan, color.Bold)
	Section  = color.New(color.FgCyan)
	Voice    = color.New(color.FgMagenta)
	Prompt   = color.New(color.FgGreen, color.Bold)
	Speaking = color.New(color.FgMagenta, color.Italic)
	Muted    = color.New(color.Faint)
)
