package common

// EmailSender is the contract for delivering transactional email.
type EmailSender interface {
	Send(to, subject, body string) error
}

// Email is a single message captured by InMemoryEmail.
type Email struct {
	To      string
	Subject string
	Body    string
}

// InMemoryEmail records messages for tests instead of sending them.
type InMemoryEmail struct {
	Outbox []Email
}

// Send records the email in memory.
func (m *InMemoryEmail) Send(to, subject, body string) error {
	if m == nil {
		return nil
	}
	m.Outbox = append(m.Outbox, Email{To: to, Subject: subject, Body: body})
	return nil
}

// NopEmailSender implements EmailSender without performing any action.
type NopEmailSender struct{}

// Send implements EmailSender.
func (NopEmailSender) Send(string, string, string) error { return nil }
