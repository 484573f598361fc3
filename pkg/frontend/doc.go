// Package frontend is the HTTP ingress of the email queue.
//
// POST / accepts a form (urlencoded or multipart) or a JSON object with the
// fields subject, body and to_email (alias to), plus optional to_name,
// from_email (alias from) and from_name. A missing sender falls back to the
// configured default. Requests missing a required field get 400 with a
// validation_failed error and nothing is enqueued. Fields that are not
// valid UTF-8 get 400 invalid_request. A store connectivity failure answers
// 503, anything else 500, and success 202:
//
//	{"data":{"status":"queued"}}
//
// GET /health and GET /ready serve liveness and readiness probes, GET /metrics
// exposes Prometheus metrics when a gatherer is configured.
package frontend
