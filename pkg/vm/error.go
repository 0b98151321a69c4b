package vm

import "fmt"

// RuntimeError is a fatal execution error. Its message is what the
// host's FatalError callback receives; Passage records where
// execution was when it occurred.
type RuntimeError struct {
	Message string
	Passage string
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return e.Message
}

func (vm *VM) errorf(format string, args ...any) *RuntimeError {
	passage := ""
	if vm.passage != nil {
		passage = vm.passage.Name
	}
	return &RuntimeError{
		Message: fmt.Sprintf(format, args...),
		Passage: passage,
	}
}
