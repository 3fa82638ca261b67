package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/fwojciec/tweetexport"
	"github.com/fwojciec/tweetexport/mock"
	teslog "github.com/fwojciec/tweetexport/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSink_Deliver(t *testing.T) {
	t.Parallel()

	exp, err := tweetexport.BuildExport([]*tweetexport.Tweet{{ID: "1"}, {ID: "2"}}, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	t.Run("logs export details", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var delivered *tweetexport.Export
		inner := &mock.ExportSink{
			DeliverFn: func(ctx context.Context, export *tweetexport.Export) error {
				delivered = export
				return nil
			},
		}

		sink := teslog.NewLoggingSink(inner, "fs", slog.New(slog.NewTextHandler(&buf, nil)))
		err := sink.Deliver(context.Background(), exp)

		require.NoError(t, err)
		assert.Same(t, exp, delivered)
		output := buf.String()
		assert.Contains(t, output, "msg=export")
		assert.Contains(t, output, "sink=fs")
		assert.Contains(t, output, "filename=tweets_export_2024-01-15T10-30-00.json")
		assert.Contains(t, output, "tweets=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ExportSink{
			DeliverFn: func(ctx context.Context, export *tweetexport.Export) error {
				return errors.New("disk full")
			},
		}

		sink := teslog.NewLoggingSink(inner, "fs", slog.New(slog.NewTextHandler(&buf, nil)))
		err := sink.Deliver(context.Background(), exp)

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"disk full\"")
	})

	t.Run("tolerates export without envelope", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.ExportSink{
			DeliverFn: func(ctx context.Context, export *tweetexport.Export) error {
				return nil
			},
		}

		sink := teslog.NewLoggingSink(inner, "archive", slog.New(slog.NewTextHandler(&buf, nil)))
		err := sink.Deliver(context.Background(), &tweetexport.Export{Filename: "x.json"})

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "tweets=0")
	})
}
