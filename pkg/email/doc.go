// Package email turns queue jobs into delivered messages.
//
// A job is a flat map with the fields subject, body, to_email, to_name,
// from_email and from_name. Message is its typed view; ValidateJob (and the
// ready made Validator) checks that a job can be delivered at all.
//
// # Backends
//
// Every backend implements queue.Sender and reports failures with the queue
// delivery classes:
//
//   - logger: logs the message and succeeds.
//   - file: writes body and JSON metadata files to EMAIL_DEV_DIR.
//   - postmark: Postmark API. Codes 300 and 406 reject, 405 and 429 and
//     transport errors are temporary.
//   - ses (alias aws): Amazon SES v2. MessageRejected, BadRequest and an
//     unverified MAIL FROM domain reject; throttling, exceeded limits and paused
//     sending are temporary.
//   - smtp: SMTP relay with optional STARTTLS, PLAIN auth and DKIM signing.
//     A relay that does not offer a configured STARTTLS or AUTH fails with
//     ErrInvalidConfig.
//     5xx replies reject, 4xx replies and network errors are temporary.
//
// Backends are created by name through a Registry:
//
//	sender, err := email.DefaultRegistry().Build(ctx, "smtp", cfg, log)
//	if errors.Is(err, email.ErrUnknownBackend) {
//	    // list email.DefaultRegistry().Names()
//	}
//
// Configuration is read from the environment into Config; only the fields of
// the selected backend matter.
package email
