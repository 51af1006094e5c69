package sugar

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ErrorModel is a bubbletea model that can carry an error out of the
// program, since tea.Program.Run only reports its own failures.
type ErrorModel interface {
	tea.Model
	Err() error
}

// RunProgram runs the model and surfaces whichever error occurred.
// Bubble Tea's own errors take precedence over the model's.
func RunProgram(model ErrorModel) error {
	resultModel, teaErr := tea.NewProgram(model).Run()
	if teaErr != nil {
		return teaErr
	}
	if errorModel, ok := resultModel.(ErrorModel); ok {
		return errorModel.Err()
	}
	return nil
}
