package queue

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// DefaultNamespace is the namespace used when none is configured
const DefaultNamespace = "reliableemail"

// List identifies one of the three queue lists
type List string

const (
	ListPending    List = "pending"
	ListProcessing List = "processing"
	ListDiscarded  List = "discarded"
)

// ParseList converts a user supplied list name into a List
func ParseList(s string) (List, error) {
	switch List(s) {
	case ListPending, ListProcessing, ListDiscarded:
		return List(s), nil
	case "queue":
		return ListPending, nil
	case "discard":
		return ListDiscarded, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownList, s)
}

// Job is one outbound email request as a flat field mapping.
// The queue never interprets its contents.
type Job map[string]string

// Token is the exact serialized form of a job as stored in the processing list.
// It doubles as the payload and as the handle for Complete and Discard.
type Token string

// ID returns a short content hash of the token for log correlation.
// Jobs with identical content share an ID.
func (t Token) ID() string {
	sum := sha256.Sum256([]byte(t))
	return hex.EncodeToString(sum[:6])
}

// Reservation is a job moved into processing by exactly one caller
type Reservation struct {
	Job   Job
	Token Token
}

// Stats holds the current length of every queue list
type Stats struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Discarded  int64 `json:"discarded"`
}

// Total returns the number of jobs tracked by the queue
func (s Stats) Total() int64 {
	return s.Pending + s.Processing + s.Discarded
}

// encodeJob serializes a job. encoding/json writes map keys in sorted order,
// so equal jobs always produce equal tokens. Invalid UTF-8 is refused since
// encoding/json would replace it and the token would no longer decode back
// into the same job.
func encodeJob(job Job) (Token, error) {
	for k, v := range job {
		if !utf8.ValidString(k) {
			return "", errors.Join(ErrMalformedPayload, fmt.Errorf("field name %q is not valid UTF-8", k))
		}
		if !utf8.ValidString(v) {
			return "", errors.Join(ErrMalformedPayload, fmt.Errorf("field %q is not valid UTF-8", k))
		}
	}

	b, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job: %w", err)
	}
	return Token(b), nil
}

func decodeJob(token Token) (Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(token), &job); err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}
	if job == nil {
		return nil, ErrMalformedPayload
	}
	return job, nil
}
