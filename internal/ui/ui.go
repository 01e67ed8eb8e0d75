// Package ui provides the main entry point for the UI.
package ui

// NewModel creates the top-level model for the terminal client.
func NewModel(serverURL string) *OnlineModel {
	return NewOnlineModel(serverURL)
}
