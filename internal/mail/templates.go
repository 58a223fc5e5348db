package mail

// Built-in template keys.
const (
	TemplateAccountCreation = "account_creation"
	TemplatePasswordReset   = "password_reset"
)

// DefaultTemplate is a template seeded on startup when missing.
type DefaultTemplate struct {
	Key       string
	Name      string
	Content   Content
	Variables []string
}

// DefaultTemplates returns the built-in transactional templates.
func DefaultTemplates() []DefaultTemplate {
	return []DefaultTemplate{
		{
			Key:  TemplateAccountCreation,
			Name: "Account creation",
			Content: Content{
				Subject: "Welcome to Finboard, {{userName}}!",
				HTML: `<h1>Welcome, {{userName}}!</h1>
<p>Your account <strong>{{userEmail}}</strong> has been created.</p>
<p>You can now track your salary, budgets and expenses in one place.</p>`,
				Text: "Welcome, {{userName}}!\n\nYour account {{userEmail}} has been created.\nYou can now track your salary, budgets and expenses in one place.",
			},
			Variables: []string{"userName", "userEmail"},
		},
		{
			Key:  TemplatePasswordReset,
			Name: "Password reset",
			Content: Content{
				Subject: "Your password reset code",
				HTML: `<p>Hello {{userName}},</p>
<p>Use the code below to reset the password of {{userEmail}}:</p>
<p style="font-size:24px;letter-spacing:4px"><strong>{{resetCode}}</strong></p>
<p>The code expires in {{expirationTime}}. If you did not ask for a reset, ignore this email.</p>`,
				Text: "Hello {{userName}},\n\nYour password reset code for {{userEmail}} is {{resetCode}}.\nIt expires in {{expirationTime}}. If you did not ask for a reset, ignore this email.",
			},
			Variables: []string{"userName", "userEmail", "resetCode", "expirationTime"},
		},
	}
}

// SampleVariables returns placeholder values used for admin test emails.
func SampleVariables(to string) map[string]string {
	return map[string]string{
		"userName":       "Test User",
		"userEmail":      to,
		"resetCode":      "123456",
		"expirationTime": "15 minutes",
	}
}
