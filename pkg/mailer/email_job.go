package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// HTML is optional; Text is the fallback body.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// WelcomeEmail builds the job published after a successful registration.
func WelcomeEmail(to, name, appName string) EmailJob {
	return EmailJob{
		To:      to,
		Subject: "Welcome to " + appName,
		Text: "Hi " + name + ",\n\n" +
			"Your account has been created. You can now log in with your email address.\n\n" +
			"The " + appName + " team",
	}
}
