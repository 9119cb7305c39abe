package utils

// Result is the outcome of a user-facing workflow. Failures carry the message
// shown to the user; no failure is fatal to the running session.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Ok builds a successful result.
func Ok(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail builds a failed result.
func Fail(message string) Result {
	return Result{Success: false, Message: message}
}
