package email

import (
	"github.com/dmitrymomot/reliablemail/pkg/queue"
	"github.com/dmitrymomot/reliablemail/pkg/validator"
)

// MaxSubjectLength bounds the subject header.
const MaxSubjectLength = 998

// Validator is the queue.Validator used by workers.
var Validator queue.Validator = queue.ValidatorFunc(ValidateJob)

// ValidateMessage checks that a message can be delivered: subject and body
// are non-blank, both addresses are bare addr-specs, and header values stay
// on one line.
func ValidateMessage(m Message) error {
	return validator.Apply(
		validator.RequiredString(FieldSubject, m.Subject),
		validator.SingleLine(FieldSubject, m.Subject),
		validator.MaxLenString(FieldSubject, m.Subject, MaxSubjectLength),
		validator.RequiredString(FieldBody, m.Body),
		validator.AddrSpec(FieldToEmail, m.ToEmail),
		validator.SingleLine(FieldToName, m.ToName),
		validator.AddrSpec(FieldFromEmail, m.FromEmail),
		validator.SingleLine(FieldFromName, m.FromName),
	)
}

// ValidateJob reports whether a job is well formed, and why not.
func ValidateJob(job queue.Job) (bool, string) {
	errs := validator.ExtractValidationErrors(ValidateMessage(MessageFromJob(job)))
	if errs.IsEmpty() {
		return true, ""
	}
	return false, errs.Summary()
}
