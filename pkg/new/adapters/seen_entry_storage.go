package adapters

import (
	"context"
	"database/sql"
	"log"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/trsst/client/pkg/metrics"
	"github.com/trsst/client/pkg/new/domain/feed"
)

const seenEntriesSchema = `
CREATE TABLE IF NOT EXISTS seen_entries (
	feed_id TEXT NOT NULL,
	entry_id TEXT NOT NULL,
	seen_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (feed_id, entry_id)
);`

// MemorySeenEntryStorage forgets everything when the process exits.
type MemorySeenEntryStorage struct {
	seen     map[string]map[string]struct{}
	seenLock sync.Mutex
}

func NewMemorySeenEntryStorage() *MemorySeenEntryStorage {
	return &MemorySeenEntryStorage{
		seen: make(map[string]map[string]struct{}),
	}
}

// MarkSeen records ids under feedID and returns those not seen before, in
// the order given.
func (s *MemorySeenEntryStorage) MarkSeen(_ context.Context, feedID feed.FeedID, ids []string) ([]string, error) {
	s.seenLock.Lock()
	defer s.seenLock.Unlock()

	seen, ok := s.seen[feedID.String()]
	if !ok {
		seen = make(map[string]struct{})
		s.seen[feedID.String()] = seen
	}

	var unseen []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unseen = append(unseen, id)
	}
	return unseen, nil
}

// SqliteSeenEntryStorage keeps seen entries across restarts.
type SqliteSeenEntryStorage struct {
	db *sql.DB
}

func NewSqliteSeenEntryStorage(db *sql.DB) *SqliteSeenEntryStorage {
	return &SqliteSeenEntryStorage{db: db}
}

func (s *SqliteSeenEntryStorage) Migrate() error {
	if _, err := s.db.Exec(seenEntriesSchema); err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "SQL_SCHEMA"}).Inc()
		return errors.Wrap(err, "error creating the seen entries table")
	}
	return nil
}

func (s *SqliteSeenEntryStorage) MarkSeen(ctx context.Context, feedID feed.FeedID, ids []string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error starting a transaction")
	}
	defer tx.Rollback() // no-op after commit

	var unseen []string
	for _, id := range ids {
		result, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO seen_entries (feed_id, entry_id) VALUES ($1, $2)`,
			feedID.String(),
			id,
		)
		if err != nil {
			metrics.AppErrors.With(prometheus.Labels{"type": "SQL_WRITE"}).Inc()
			return nil, errors.Wrapf(err, "error marking '%s' as seen", id)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return nil, errors.Wrap(err, "error reading affected rows")
		}
		if n > 0 {
			unseen = append(unseen, id)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.AppErrors.With(prometheus.Labels{"type": "SQL_WRITE"}).Inc()
		return nil, errors.Wrap(err, "error committing seen entries")
	}

	log.Printf("[DEBUG] %d of %d entries of '%s' are new", len(unseen), len(ids), feedID)
	return unseen, nil
}
