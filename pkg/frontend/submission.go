package frontend

import (
	"github.com/dmitrymomot/reliablemail/pkg/email"
	"github.com/dmitrymomot/reliablemail/pkg/validator"
)

// Accepted aliases of the address fields.
const (
	fieldTo   = "to"
	fieldFrom = "from"
)

// messageFromFields resolves aliases and sender defaults.
// Canonical names win over aliases.
func messageFromFields(fields map[string]string, cfg Config) email.Message {
	m := email.Message{
		Subject:   fields[email.FieldSubject],
		Body:      fields[email.FieldBody],
		ToEmail:   firstNonEmpty(fields[email.FieldToEmail], fields[fieldTo]),
		ToName:    fields[email.FieldToName],
		FromEmail: firstNonEmpty(fields[email.FieldFromEmail], fields[fieldFrom]),
		FromName:  fields[email.FieldFromName],
	}
	if m.FromEmail == "" {
		m.FromEmail = cfg.DefaultFromEmail
		if m.FromName == "" {
			m.FromName = cfg.DefaultFromName
		}
	}
	return m
}

// validateSubmission checks presence only. Workers validate the full shape
// and discard what cannot be delivered.
func validateSubmission(m email.Message) error {
	return validator.Apply(
		validator.RequiredString(email.FieldSubject, m.Subject),
		validator.RequiredString(email.FieldBody, m.Body),
		validator.RequiredString(email.FieldToEmail, m.ToEmail),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
