package email

import (
	"net/mail"

	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

// Job field names.
const (
	FieldSubject   = "subject"
	FieldBody      = "body"
	FieldToEmail   = "to_email"
	FieldToName    = "to_name"
	FieldFromEmail = "from_email"
	FieldFromName  = "from_name"
)

// Message is the typed view of an email job.
type Message struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	ToEmail   string `json:"to_email"`
	ToName    string `json:"to_name,omitempty"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name,omitempty"`
}

// MessageFromJob reads the known fields of a job. Unknown fields are ignored.
func MessageFromJob(job queue.Job) Message {
	return Message{
		Subject:   job[FieldSubject],
		Body:      job[FieldBody],
		ToEmail:   job[FieldToEmail],
		ToName:    job[FieldToName],
		FromEmail: job[FieldFromEmail],
		FromName:  job[FieldFromName],
	}
}

// Job converts the message into a queue job. Empty optional names are omitted.
func (m Message) Job() queue.Job {
	job := queue.Job{
		FieldSubject:   m.Subject,
		FieldBody:      m.Body,
		FieldToEmail:   m.ToEmail,
		FieldFromEmail: m.FromEmail,
	}
	if m.ToName != "" {
		job[FieldToName] = m.ToName
	}
	if m.FromName != "" {
		job[FieldFromName] = m.FromName
	}
	return job
}

// To returns the formatted recipient address.
func (m Message) To() string {
	return formatAddress(m.ToName, m.ToEmail)
}

// From returns the formatted sender address.
func (m Message) From() string {
	return formatAddress(m.FromName, m.FromEmail)
}

func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return (&mail.Address{Name: name, Address: addr}).String()
}
