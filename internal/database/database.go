package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franckalain/foodrescue/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql schema_postgres.sql
var schemaFS embed.FS

// ErrNotFound is returned when an update targets a row that does not exist
var ErrNotFound = errors.New("record not found")

// DB interface defines the methods our database should implement
type DB interface {
	SaveFoodSubmission(ctx context.Context, sub *models.FoodSubmission) error
	GetFoodSubmission(ctx context.Context, id string) (*models.FoodSubmission, error)
	UpdateSubmissionStatus(ctx context.Context, id string, status models.SubmissionStatus) error
	GetRecentFoodSubmissions(ctx context.Context, limit int) ([]*models.FoodSubmission, error)
	SaveNGO(ctx context.Context, ngo *models.NGO) error
	ListNGOs(ctx context.Context) ([]*models.NGO, error)
	Close() error
}

// Open connects to the database selected by driver ("sqlite" or "postgres").
// For sqlite, dsn is a file path; for postgres, a connection URL.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (DB, error) {
	switch driver {
	case "sqlite":
		return NewSQLiteDB(dsn, logger)
	case "postgres":
		return NewPostgresDB(ctx, dsn, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// prepareSubmission fills the fields the database owns before an insert
func prepareSubmission(sub *models.FoodSubmission) {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	sub.ApplyDefaults()
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
}

// sqliteTimeLayout is fixed-width so that text ordering matches time ordering
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, s)
}

// SQLiteDB implements the DB interface
type SQLiteDB struct {
	db     *sql.DB
	logger *zap.Logger
}

// sqlitePragmas are applied by the driver to every pooled connection
var sqlitePragmas = []string{
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"busy_timeout(5000)",
}

func sqliteDSN(dbPath string) string {
	var b strings.Builder
	b.WriteString(dbPath)
	for i, p := range sqlitePragmas {
		if i == 0 && !strings.Contains(dbPath, "?") {
			b.WriteString("?")
		} else {
			b.WriteString("&")
		}
		b.WriteString("_pragma=")
		b.WriteString(p)
	}
	return b.String()
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(dbPath string, logger *zap.Logger) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	logger.Info("Database schema initialized", zap.String("driver", "sqlite"), zap.String("path", dbPath))
	return &SQLiteDB{db: db, logger: logger}, nil
}

func initializeSchema(db *sql.DB) error {
	schemaBytes, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("error reading schema file: %w", err)
	}

	if _, err := db.Exec(string(schemaBytes)); err != nil {
		return fmt.Errorf("error executing schema: %w", err)
	}
	return nil
}

// SaveFoodSubmission inserts a new food submission
func (s *SQLiteDB) SaveFoodSubmission(ctx context.Context, sub *models.FoodSubmission) error {
	query := `
		INSERT INTO food_submissions (
			id, food_type, quantity, unit, location, event_type, notes,
			status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	prepareSubmission(sub)

	_, err := s.db.ExecContext(ctx, query,
		sub.ID, sub.FoodType, sub.Quantity, sub.Unit, sub.Location,
		sub.EventType, sub.Notes, string(sub.Status),
		formatTime(sub.CreatedAt), formatTime(sub.UpdatedAt),
	)
	return err
}

const submissionColumns = `id, food_type, quantity, unit, location, event_type, notes,
	status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteSubmission(row rowScanner) (*models.FoodSubmission, error) {
	var sub models.FoodSubmission
	var status, createdAt, updatedAt string

	err := row.Scan(
		&sub.ID, &sub.FoodType, &sub.Quantity, &sub.Unit, &sub.Location,
		&sub.EventType, &sub.Notes, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.Status = models.SubmissionStatus(status)
	if sub.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	if sub.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}
	return &sub, nil
}

// GetFoodSubmission retrieves a single submission; it returns nil, nil when
// no row matches.
func (s *SQLiteDB) GetFoodSubmission(ctx context.Context, id string) (*models.FoodSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM food_submissions WHERE id = ?`

	sub, err := scanSQLiteSubmission(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// UpdateSubmissionStatus updates the status of a submission
func (s *SQLiteDB) UpdateSubmissionStatus(ctx context.Context, id string, status models.SubmissionStatus) error {
	query := `
		UPDATE food_submissions
		SET status = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query, string(status), formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRecentFoodSubmissions retrieves the most recent submissions, newest first
func (s *SQLiteDB) GetRecentFoodSubmissions(ctx context.Context, limit int) ([]*models.FoodSubmission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM food_submissions
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []*models.FoodSubmission{}
	for rows.Next() {
		sub, err := scanSQLiteSubmission(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, sub)
	}
	return results, rows.Err()
}

// SaveNGO inserts an NGO or replaces the row with the same id
func (s *SQLiteDB) SaveNGO(ctx context.Context, ngo *models.NGO) error {
	query := `
		INSERT INTO ngos (
			id, name, address, latitude, longitude, contact_phone, contact_email,
			description, capacity_kg, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			contact_phone = excluded.contact_phone,
			contact_email = excluded.contact_email,
			description = excluded.description,
			capacity_kg = excluded.capacity_kg
	`

	if ngo.ID == "" {
		ngo.ID = uuid.New().String()
	}
	if ngo.CreatedAt.IsZero() {
		ngo.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, query,
		ngo.ID, ngo.Name, ngo.Address, ngo.Latitude, ngo.Longitude,
		ngo.ContactPhone, ngo.ContactEmail, ngo.Description, ngo.CapacityKg,
		formatTime(ngo.CreatedAt),
	)
	return err
}

// ListNGOs returns every NGO ordered by name
func (s *SQLiteDB) ListNGOs(ctx context.Context) ([]*models.NGO, error) {
	query := `
		SELECT id, name, address, latitude, longitude, contact_phone, contact_email,
			description, capacity_kg, created_at
		FROM ngos
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []*models.NGO{}
	for rows.Next() {
		var ngo models.NGO
		var createdAt string
		err := rows.Scan(
			&ngo.ID, &ngo.Name, &ngo.Address, &ngo.Latitude, &ngo.Longitude,
			&ngo.ContactPhone, &ngo.ContactEmail, &ngo.Description, &ngo.CapacityKg,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}
		if ngo.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("error parsing created_at of ngo %s: %w", ngo.ID, err)
		}
		results = append(results, &ngo)
	}
	return results, rows.Err()
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
