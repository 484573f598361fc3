package frontend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// bindFields reads a submission as a flat field map from a urlencoded form,
// a multipart form or a JSON object of strings.
func bindFields(r *http.Request) (map[string]string, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return nil, ErrMissingContentType
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, formError(err)
		}
		return firstValues(r.PostForm), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 10); err != nil {
			return nil, formError(err)
		}
		return firstValues(r.MultipartForm.Value), nil
	case "application/json":
		return bindJSON(r.Body)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
}

func bindJSON(body io.Reader) (map[string]string, error) {
	var fields map[string]string
	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, ErrRequestTooLarge
		case errors.Is(err, io.EOF):
			return nil, fmt.Errorf("%w: empty body", ErrInvalidJSON)
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: expected an object", ErrInvalidJSON)
	}
	return fields, nil
}

func formError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrRequestTooLarge
	}
	return fmt.Errorf("%w: %v", ErrInvalidForm, err)
}

func firstValues(values map[string][]string) map[string]string {
	fields := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields
}
