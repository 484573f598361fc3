package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/reliablemail/internal/cli"
	"github.com/dmitrymomot/reliablemail/pkg/email"
	"github.com/dmitrymomot/reliablemail/pkg/logger"
	"github.com/dmitrymomot/reliablemail/pkg/queue"
)

const testNamespace = "clitest"

// newTestApp returns an App whose store is an in-memory list store.
func newTestApp(t *testing.T) (*cli.App, *queue.Queue) {
	t.Helper()

	store := queue.NewMemoryStore()
	app := &cli.App{
		OpenStore: func(context.Context, cli.StoreOptions) (*cli.Backing, error) {
			return &cli.Backing{
				Store:       store,
				Healthcheck: func(context.Context) error { return nil },
			}, nil
		},
		Registry: email.DefaultRegistry(),
	}

	q, err := queue.New(store, queue.WithNamespace(testNamespace), queue.WithLogger(logger.Discard()))
	require.NoError(t, err)
	return app, q
}

// execute runs the root command with args and returns what it printed on stdout.
func execute(ctx context.Context, app *cli.App, stdin string, args ...string) (string, error) {
	cmd := cli.NewRootCmd(app)

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--namespace", testNamespace))

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func validJob(subject string) queue.Job {
	return queue.Job{
		email.FieldSubject:   subject,
		email.FieldBody:      "Hello",
		email.FieldToEmail:   "user@example.com",
		email.FieldFromEmail: "no-reply@example.org",
	}
}

func requireStats(t *testing.T, q *queue.Queue, pending, processing, discarded int64) {
	t.Helper()
	stats, err := q.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, queue.Stats{Pending: pending, Processing: processing, Discarded: discarded}, stats)
}
