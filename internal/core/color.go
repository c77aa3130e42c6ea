package core

// Color is the foreground of a screen cell. The platform layer maps each
// value to an ANSI 256-color code.
type Color uint8

const (
	ColorDefault     Color = iota
	ColorRed               // apple
	ColorGreen             // snake body
	ColorYellow            // dialogs, pause overlay
	ColorGray              // borders, hints
	ColorBrightGreen       // snake head
	ColorBrightRed         // crash overlay, errors
	ColorBrightWhite       // HUD
	ColorOrange            // win overlay
)
