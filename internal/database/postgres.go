package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franckalain/foodrescue/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresDB implements the DB interface on a pgx connection pool
type PostgresDB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresDB connects to PostgreSQL and applies the schema
func NewPostgresDB(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresDB, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("error parsing database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	schemaBytes, err := schemaFS.ReadFile("schema_postgres.sql")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error reading schema file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(schemaBytes)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	logger.Info("Database schema initialized", zap.String("driver", "postgres"))
	return &PostgresDB{pool: pool, logger: logger}, nil
}

// SaveFoodSubmission inserts a new food submission
func (p *PostgresDB) SaveFoodSubmission(ctx context.Context, sub *models.FoodSubmission) error {
	query := `
		INSERT INTO food_submissions (
			id, food_type, quantity, unit, location, event_type, notes,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	prepareSubmission(sub)

	_, err := p.pool.Exec(ctx, query,
		sub.ID, sub.FoodType, sub.Quantity, sub.Unit, sub.Location,
		sub.EventType, sub.Notes, string(sub.Status), sub.CreatedAt, sub.UpdatedAt,
	)
	return err
}

func scanPostgresSubmission(row pgx.Row) (*models.FoodSubmission, error) {
	var sub models.FoodSubmission
	var status string

	err := row.Scan(
		&sub.ID, &sub.FoodType, &sub.Quantity, &sub.Unit, &sub.Location,
		&sub.EventType, &sub.Notes, &status, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sub.Status = models.SubmissionStatus(status)
	return &sub, nil
}

// GetFoodSubmission retrieves a single submission; it returns nil, nil when
// no row matches.
func (p *PostgresDB) GetFoodSubmission(ctx context.Context, id string) (*models.FoodSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM food_submissions WHERE id = $1`

	sub, err := scanPostgresSubmission(p.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// UpdateSubmissionStatus updates the status of a submission
func (p *PostgresDB) UpdateSubmissionStatus(ctx context.Context, id string, status models.SubmissionStatus) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE food_submissions SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetRecentFoodSubmissions retrieves the most recent submissions, newest first
func (p *PostgresDB) GetRecentFoodSubmissions(ctx context.Context, limit int) ([]*models.FoodSubmission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM food_submissions
		ORDER BY created_at DESC, seq DESC
		LIMIT $1
	`

	rows, err := p.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []*models.FoodSubmission{}
	for rows.Next() {
		sub, err := scanPostgresSubmission(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, sub)
	}
	return results, rows.Err()
}

// SaveNGO inserts an NGO or replaces the row with the same id
func (p *PostgresDB) SaveNGO(ctx context.Context, ngo *models.NGO) error {
	query := `
		INSERT INTO ngos (
			id, name, address, latitude, longitude, contact_phone, contact_email,
			description, capacity_kg, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			contact_phone = EXCLUDED.contact_phone,
			contact_email = EXCLUDED.contact_email,
			description = EXCLUDED.description,
			capacity_kg = EXCLUDED.capacity_kg
	`

	if ngo.ID == "" {
		ngo.ID = uuid.New().String()
	}
	if ngo.CreatedAt.IsZero() {
		ngo.CreatedAt = time.Now().UTC()
	}

	_, err := p.pool.Exec(ctx, query,
		ngo.ID, ngo.Name, ngo.Address, ngo.Latitude, ngo.Longitude,
		ngo.ContactPhone, ngo.ContactEmail, ngo.Description, ngo.CapacityKg,
		ngo.CreatedAt,
	)
	return err
}

// ListNGOs returns every NGO ordered by name
func (p *PostgresDB) ListNGOs(ctx context.Context) ([]*models.NGO, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, address, latitude, longitude, contact_phone, contact_email,
			description, capacity_kg, created_at
		FROM ngos
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []*models.NGO{}
	for rows.Next() {
		var ngo models.NGO
		err := rows.Scan(
			&ngo.ID, &ngo.Name, &ngo.Address, &ngo.Latitude, &ngo.Longitude,
			&ngo.ContactPhone, &ngo.ContactEmail, &ngo.Description, &ngo.CapacityKg,
			&ngo.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, &ngo)
	}
	return results, rows.Err()
}

// Close releases the connection pool
func (p *PostgresDB) Close() error {
	p.pool.Close()
	return nil
}
