package service

// ValidationError marks a rejected payload or query parameter. The
// HTTP layer maps it to a 400 response; everything else stays a 500.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErr(msg string) error {
	return &ValidationError{Msg: msg}
}
