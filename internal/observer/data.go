package observer

// TestExecutionStart is empty struct to inform consumer that test execution has begun.
type TestExecutionStart struct{}

// TestExecutionEnd is empty struct to inform consumer that test execution has finished.
type TestExecutionEnd struct{}

// Interface defines the methods of an observer.
type Interface interface {
	// Start fires up the observer in a new goroutine.
	Start() error

	// Finalize waits for the observer to receive the final property value, process it,
	// and shut itself down.
	Finalize() error
}
