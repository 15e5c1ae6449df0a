package error

//ContextClosedError is returned if a blocking operation was interrupted by its context
type ContextClosedError struct {
	Message string
	Cause   error
}

func (m *ContextClosedError) Error() string {
	if m.Cause == nil {
		return m.Message
	}
	return m.Message + ": " + m.Cause.Error()
}

func (m *ContextClosedError) Unwrap() error {
	return m.Cause
}
