// Package validator provides small composable validation rules.
//
// A Rule pairs a check with the error reported when it fails. Apply runs a
// list of rules and returns ValidationErrors for every failure, or nil.
//
//	err := validator.Apply(
//	    validator.RequiredString("subject", subject),
//	    validator.AddrSpec("to_email", to),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//	    // errs.Map() groups messages by field
//	}
//
// ValidationErrors matches ErrValidationFailed with errors.Is.
package validator
