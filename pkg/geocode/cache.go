package geocode

import (
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// suggestionCache stores resolved suggestion lists keyed by normalized query
// so repeated autocomplete sessions for the same text skip the provider.
type suggestionCache struct {
	db *sql.DB
}

const cacheMigration = `
CREATE TABLE IF NOT EXISTS suggestion_cache (
	query_hash  TEXT PRIMARY KEY,
	suggestions TEXT NOT NULL,
	cached_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);`

// openCache opens (creating if needed) the SQLite cache at path.
func openCache(path string) (*suggestionCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: open cache")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "geocode: exec %s", pragma)
		}
	}
	if _, err := db.Exec(cacheMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "geocode: migrate cache")
	}
	return &suggestionCache{db: db}, nil
}

// cacheKey returns SHA-256 hex of the normalized query.
func cacheKey(query string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

// get looks up cached suggestions, respecting TTL if configured. Cache
// failures are logged and treated as misses.
func (c *suggestionCache) get(query string, limit, ttlDays int) ([]Suggestion, bool) {
	q := "SELECT suggestions FROM suggestion_cache WHERE query_hash = ?"
	if ttlDays > 0 {
		q += fmt.Sprintf(" AND cached_at > datetime('now', '-%d days')", ttlDays)
	}

	var raw string
	if err := c.db.QueryRow(q, cacheKey(query)).Scan(&raw); err != nil {
		if err != sql.ErrNoRows {
			zap.L().Warn("geocode: cache lookup failed", zap.Error(err))
		}
		return nil, false
	}

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		zap.L().Warn("geocode: corrupt cache entry", zap.Error(err))
		return nil, false
	}
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	zap.L().Debug("geocode: cache hit", zap.String("query", query), zap.Int("count", len(suggestions)))
	return suggestions, true
}

// put stores suggestions for a query, replacing any prior entry.
func (c *suggestionCache) put(query string, suggestions []Suggestion) {
	raw, err := json.Marshal(suggestions)
	if err != nil {
		zap.L().Warn("geocode: marshal cache entry", zap.Error(err))
		return
	}
	_, err = c.db.Exec(`
		INSERT INTO suggestion_cache (query_hash, suggestions, cached_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT (query_hash) DO UPDATE SET
			suggestions = excluded.suggestions,
			cached_at = datetime('now')`,
		cacheKey(query), string(raw))
	if err != nil {
		zap.L().Warn("geocode: cache store failed", zap.Error(err))
	}
}

func (c *suggestionCache) close() error {
	return c.db.Close()
}
