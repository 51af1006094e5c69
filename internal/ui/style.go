package ui

import "github.com/charmbracelet/lipgloss"

var TitleStyle = lipgloss.NewStyle().Inline(true).Bold(true).Foreground(lipgloss.Color("252")).Render
var HelpStyle = lipgloss.NewStyle().Inline(true).Foreground(lipgloss.Color("241")).Render

// Quality tier colours: green for sample-locked/good, amber for
// marginal, red for drifting/offline.
var GoodStyle = lipgloss.NewStyle().Inline(true).Foreground(lipgloss.Color("42")).Render
var WarnStyle = lipgloss.NewStyle().Inline(true).Foreground(lipgloss.Color("214")).Render
var BadStyle = lipgloss.NewStyle().Inline(true).Bold(true).Foreground(lipgloss.Color("196")).Render
