package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/Sri-Rahul/linkanalysis/internal/domain"
	"github.com/Sri-Rahul/linkanalysis/internal/repository"
)

// Repository implements repository.LinkRepository and repository.EventRepository
// using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(databasePath string) (*Repository, error) {
	// DSN parameters apply to every pooled connection: foreign keys so
	// event rows cascade on link deletion, WAL for concurrent reads, and
	// a busy timeout so concurrent writers wait instead of failing.
	dsn := databasePath + "?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}

	if err := repo.runMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

const linkColumns = "id, code, destination_url, custom_alias, owner_id, clicks, active, expires_at, created_at"

// CreateLink persists a new link record. The unique index on code resolves
// concurrent allocation races: the loser gets domain.ErrAliasTaken.
func (r *Repository) CreateLink(ctx context.Context, link *domain.Link) (*domain.Link, error) {
	query := `
		INSERT INTO links (code, destination_url, custom_alias, owner_id, active, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		link.Code,
		link.Destination,
		link.CustomAlias,
		link.OwnerID,
		link.Active,
		nullableTime(link.ExpiresAt),
		link.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAliasTaken
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new link id: %w", err)
	}

	created := *link
	created.ID = id
	created.Clicks = 0
	return &created, nil
}

// GetLink retrieves a link by code. Inactive and expired links are still
// returned; validity is the dispatcher's concern, not the registry's.
func (r *Repository) GetLink(ctx context.Context, code string) (*domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE code = ?`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return link, nil
}

// ListLinks retrieves all links belonging to an owner, newest first
func (r *Repository) ListLinks(ctx context.Context, ownerID string) ([]*domain.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE owner_id = ? ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []*domain.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// UpdateLink applies the non-nil fields of upd to a link and returns the
// updated record. When ownerID is given the update is scoped to that owner.
func (r *Repository) UpdateLink(ctx context.Context, code string, ownerID *string, upd domain.LinkUpdate) (*domain.Link, error) {
	query := `
		UPDATE links
		SET active = COALESCE(?, active), expires_at = COALESCE(?, expires_at)
		WHERE code = ?`
	args := []any{nullableBool(upd.Active), nullableTime(upd.ExpiresAt), code}

	if ownerID != nil {
		query += " AND owner_id = ?"
		args = append(args, *ownerID)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update link: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrLinkNotFound
	}

	return r.GetLink(ctx, code)
}

// DeleteLink removes a link. Deleting an absent code is treated as already
// done; visit events go with the link via the cascading foreign key.
func (r *Repository) DeleteLink(ctx context.Context, code string, ownerID *string) error {
	query := `DELETE FROM links WHERE code = ?`
	args := []any{code}

	if ownerID != nil {
		query += " AND owner_id = ?"
		args = append(args, *ownerID)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return nil
}

// IncrementClicks adds one to the click counter as a single statement
// evaluated by the store, so concurrent redirects never lose an increment.
func (r *Repository) IncrementClicks(ctx context.Context, code string) (int64, error) {
	query := `UPDATE links SET clicks = clicks + 1 WHERE code = ? RETURNING clicks`

	var clicks int64
	err := r.db.QueryRowContext(ctx, query, code).Scan(&clicks)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrLinkNotFound
		}
		return 0, fmt.Errorf("failed to increment clicks: %w", err)
	}
	return clicks, nil
}

// CodeExists checks if a code is already allocated
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM links WHERE code = ?", code).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return count > 0, nil
}

// InsertEvent appends one immutable visit event
func (r *Repository) InsertEvent(ctx context.Context, event *domain.VisitEvent) error {
	query := `
		INSERT INTO visit_events (id, link_id, occurred_at, device, browser, os, referrer, country, city, ip_address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.LinkID,
		event.OccurredAt.UTC(),
		event.Device,
		event.Browser,
		event.OS,
		event.Referrer,
		event.Country,
		event.City,
		event.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to insert visit event: %w", err)
	}
	return nil
}

const eventColumns = "id, link_id, occurred_at, device, browser, os, referrer, country, city, ip_address"

// EventsByLink retrieves events for a link ordered by timestamp descending
func (r *Repository) EventsByLink(ctx context.Context, linkID int64, limit int) ([]*domain.VisitEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM visit_events WHERE link_id = ? ORDER BY occurred_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, linkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// RecentEventsByOwner retrieves the most recent events across all of an
// owner's links
func (r *Repository) RecentEventsByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.VisitEvent, error) {
	query := `
		SELECT e.id, e.link_id, e.occurred_at, e.device, e.browser, e.os, e.referrer, e.country, e.city, e.ip_address
		FROM visit_events e
		JOIN links l ON l.id = e.link_id
		WHERE l.owner_id = ?
		ORDER BY e.occurred_at DESC, e.id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ClicksPerDay counts events per UTC calendar day since the given time.
// Days with no events produce no row, so the series is sparse.
func (r *Repository) ClicksPerDay(ctx context.Context, linkID int64, since time.Time) ([]domain.SeriesPoint, error) {
	query := `
		SELECT date(occurred_at) AS day, COUNT(*) AS clicks
		FROM visit_events
		WHERE link_id = ? AND datetime(occurred_at) >= datetime(?)
		GROUP BY day
		ORDER BY day ASC`

	rows, err := r.db.QueryContext(ctx, query, linkID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get clicks per day: %w", err)
	}
	defer rows.Close()

	var series []domain.SeriesPoint
	for rows.Next() {
		var day string
		var clicks int64
		if err := rows.Scan(&day, &clicks); err != nil {
			return nil, fmt.Errorf("failed to scan series point: %w", err)
		}
		date, err := time.ParseInLocation("2006-01-02", day, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse day bucket %q: %w", day, err)
		}
		series = append(series, domain.SeriesPoint{Date: date, Clicks: clicks})
	}
	return series, rows.Err()
}

// dimensionColumns whitelists the categorical fields a breakdown can group by
var dimensionColumns = map[string]string{
	domain.DimensionDevice:  "device",
	domain.DimensionBrowser: "browser",
	domain.DimensionOS:      "os",
}

// CountByDimension groups all events for a link by one categorical field
func (r *Repository) CountByDimension(ctx context.Context, linkID int64, dimension string) ([]domain.CategoryCount, error) {
	column, ok := dimensionColumns[dimension]
	if !ok {
		return nil, domain.ErrInvalidDimension
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) FROM visit_events WHERE link_id = ? GROUP BY %s`, column, column)

	rows, err := r.db.QueryContext(ctx, query, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s breakdown: %w", dimension, err)
	}
	defer rows.Close()

	return scanCategoryCounts(rows)
}

// DeviceTallyByOwner groups events across all of an owner's links by device
func (r *Repository) DeviceTallyByOwner(ctx context.Context, ownerID string) ([]domain.CategoryCount, error) {
	query := `
		SELECT e.device, COUNT(*)
		FROM visit_events e
		JOIN links l ON l.id = e.link_id
		WHERE l.owner_id = ?
		GROUP BY e.device`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get device tally: %w", err)
	}
	defer rows.Close()

	return scanCategoryCounts(rows)
}

// Close closes the repository connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanLink(row scanner) (*domain.Link, error) {
	var link domain.Link
	var ownerID sql.NullString
	var expiresAt sql.NullTime

	err := row.Scan(
		&link.ID,
		&link.Code,
		&link.Destination,
		&link.CustomAlias,
		&ownerID,
		&link.Clicks,
		&link.Active,
		&expiresAt,
		&link.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if ownerID.Valid {
		link.OwnerID = &ownerID.String
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		link.ExpiresAt = &t
	}
	return &link, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.VisitEvent, error) {
	var events []*domain.VisitEvent
	for rows.Next() {
		var event domain.VisitEvent
		var ip sql.NullString
		err := rows.Scan(
			&event.ID,
			&event.LinkID,
			&event.OccurredAt,
			&event.Device,
			&event.Browser,
			&event.OS,
			&event.Referrer,
			&event.Country,
			&event.City,
			&ip,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit event: %w", err)
		}
		if ip.Valid {
			event.IPAddress = ip.String
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}

func scanCategoryCounts(rows *sql.Rows) ([]domain.CategoryCount, error) {
	var counts []domain.CategoryCount
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

// Ensure Repository implements both repository interfaces
var (
	_ repository.LinkRepository  = (*Repository)(nil)
	_ repository.EventRepository = (*Repository)(nil)
)
