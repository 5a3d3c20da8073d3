package handlers

// SetResetMailer swaps the reset-mail sender for tests and returns a restore
// function.
func SetResetMailer(f func(to, code string) error) (restore func()) {
	original := sendResetEmail
	sendResetEmail = f

	return func() { sendResetEmail = original }
}
