// Package client submits emails to the reliablemail HTTP ingress.
//
//	c, err := client.New("http://localhost:8080", client.WithRetry(3, nil))
//	if err != nil {
//	    return err
//	}
//	err = c.Submit(ctx, client.Submission{
//	    Subject: "Welcome",
//	    Body:    "Hello!",
//	    ToEmail: "user@example.com",
//	})
//	switch {
//	case errors.Is(err, client.ErrRejected):
//	    // invalid submission, details in *client.ResponseError
//	case errors.Is(err, client.ErrUnavailable):
//	    // not queued, try again later
//	}
//
// Only ErrUnavailable failures are retried, and only when WithRetry is set.
package client
