package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/tweetexport"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ tweetexport.ExportArchive = (*Archive)(nil)

// Archive implements tweetexport.ExportArchive using SQLite.
// Every delivered export is stored with its tweets in export order.
type Archive struct {
	db *DB
}

// NewArchive creates a new Archive.
func NewArchive(db *DB) *Archive {
	return &Archive{db: db}
}

// hashPayload computes xxHash of an export payload and returns a hex string.
func hashPayload(payload []byte) string {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, xxhash.Sum64(payload))
	return hex.EncodeToString(b)
}

// Deliver records the export and its tweets in a single transaction.
func (a *Archive) Deliver(ctx context.Context, export *tweetexport.Export) error {
	if export.Envelope == nil {
		return tweetexport.Errorf(tweetexport.EEXPORT, "export %s has no envelope", export.Filename)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.New().String()
	createdAt := time.Now().UTC()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO exports (id, filename, export_date, tweet_count, payload_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, export.Filename, export.Envelope.ExportDate, export.Envelope.TweetCount,
		hashPayload(export.Payload), createdAt.Format(timestampLayout)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO export_tweets (export_id, position, tweet_id, payload)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range export.Envelope.Tweets {
		payload, err := json.Marshal(t)
		if err != nil {
			return tweetexport.Errorf(tweetexport.EEXPORT, "failed to encode tweet %s: %v", t.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, id, i, t.ID, string(payload)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindExports retrieves archived exports matching the filter, newest first.
func (a *Archive) FindExports(ctx context.Context, filter tweetexport.ExportFilter) ([]*tweetexport.ArchivedExport, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, filename, export_date, tweet_count, payload_hash, created_at FROM exports WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.TweetID != nil {
		query.WriteString(" AND id IN (SELECT export_id FROM export_tweets WHERE tweet_id = ?)")
		args = append(args, *filter.TweetID)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := a.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []*tweetexport.ArchivedExport
	for rows.Next() {
		var e tweetexport.ArchivedExport
		var createdAt string

		if err := rows.Scan(&e.ID, &e.Filename, &e.ExportDate, &e.TweetCount, &e.PayloadHash, &createdAt); err != nil {
			return nil, err
		}

		e.CreatedAt, err = parseTimestamp(createdAt, "created_at")
		if err != nil {
			return nil, err
		}

		exports = append(exports, &e)
	}

	return exports, rows.Err()
}

// FindExportTweets returns the tweets of an archived export in export order.
func (a *Archive) FindExportTweets(ctx context.Context, exportID string) ([]*tweetexport.Tweet, error) {
	var exists int
	err := a.db.QueryRowContext(ctx, "SELECT 1 FROM exports WHERE id = ?", exportID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, tweetexport.Errorf(tweetexport.ENOTFOUND, "export not found")
	}
	if err != nil {
		return nil, err
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT payload FROM export_tweets
		WHERE export_id = ?
		ORDER BY position ASC
	`, exportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tweets := []*tweetexport.Tweet{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var t tweetexport.Tweet
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, tweetexport.Errorf(tweetexport.EINTERNAL, "corrupt tweet payload in export %s: %v", exportID, err)
		}
		tweets = append(tweets, &t)
	}

	return tweets, rows.Err()
}

// DeleteExport permanently removes an archived export and its tweets.
func (a *Archive) DeleteExport(ctx context.Context, id string) error {
	result, err := a.db.ExecContext(ctx, "DELETE FROM exports WHERE id = ?", id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return tweetexport.Errorf(tweetexport.ENOTFOUND, "export not found")
	}

	return nil
}
