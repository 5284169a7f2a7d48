package entities

// UIScreen экран TUI
type UIScreen int

const (
	UIScreenMenu UIScreen = iota
	UIScreenFiles
	UIScreenAdd
	UIScreenConfig
)
