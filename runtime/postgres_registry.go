package runtime

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/pressly/goose/v3"

	cfgpred "github.com/cfgpred/cfgpred-go"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresConfig configures the Postgres-backed registry.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxConnections  int           `yaml:"max_connections"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// PostgresRegistry is a Registry backed by PostgreSQL.
type PostgresRegistry struct {
	pool      *pgxpool.Pool
	config    *PostgresConfig
	publisher ChangePublisher
}

// NewPostgresRegistry connects to Postgres, optionally runs the embedded
// migrations, and returns a ready registry. publisher may be nil.
func NewPostgresRegistry(config *PostgresConfig, publisher ChangePublisher) (*PostgresRegistry, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	if config.MaxConnections == 0 {
		config.MaxConnections = 25
	}
	if config.ConnMaxLifetime == 0 {
		config.ConnMaxLifetime = time.Hour
	}
	if config.ConnMaxIdleTime == 0 {
		config.ConnMaxIdleTime = 30 * time.Minute
	}

	poolConfig, err := pgxpool.ParseConfig(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}
	poolConfig.MaxConns = int32(config.MaxConnections)
	poolConfig.MaxConnLifetime = config.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = config.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	registry := &PostgresRegistry{pool: pool, config: config, publisher: publisher}

	if config.AutoMigrate {
		if err := registry.runMigrations(); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}
	return registry, nil
}

// runMigrations applies the embedded goose migrations over a database/sql
// connection, which goose requires.
func (r *PostgresRegistry) runMigrations() error {
	db, err := sql.Open("pgx", r.config.DSN)
	if err != nil {
		return fmt.Errorf("opening database for migrations: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *PostgresRegistry) Close() {
	r.pool.Close()
}

func (r *PostgresRegistry) Store(ctx context.Context, name, source string) (*StoredPredicate, error) {
	canonical, fingerprint, parsed, err := prepare(name, source)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stored := &StoredPredicate{
		ID:          uuid.NewString(),
		Name:        name,
		Source:      canonical,
		Fingerprint: fingerprint,
		CreatedAt:   now,
		UpdatedAt:   now,
		Predicate:   parsed,
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO predicates (id, name, source, fingerprint, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (name) DO UPDATE
		SET source = EXCLUDED.source,
		    fingerprint = EXCLUDED.fingerprint,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		stored.ID, name, canonical, fingerprint, now)
	if err := row.Scan(&stored.ID, &stored.CreatedAt); err != nil {
		return nil, fmt.Errorf("storing predicate %q: %w", name, err)
	}

	r.publish(ctx, ChangeEvent{Op: "stored", Name: name, Fingerprint: fingerprint, Timestamp: now})
	return stored, nil
}

func (r *PostgresRegistry) Get(ctx context.Context, name string) (*StoredPredicate, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, source, fingerprint, created_at, updated_at
		FROM predicates WHERE name = $1`, name)

	stored, err := scanPredicate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("loading predicate %q: %w", name, err)
	}
	return stored, nil
}

func (r *PostgresRegistry) List(ctx context.Context) ([]*StoredPredicate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, source, fingerprint, created_at, updated_at
		FROM predicates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing predicates: %w", err)
	}
	defer rows.Close()

	var list []*StoredPredicate
	for rows.Next() {
		stored, err := scanPredicate(rows)
		if err != nil {
			return nil, fmt.Errorf("listing predicates: %w", err)
		}
		list = append(list, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing predicates: %w", err)
	}
	return list, nil
}

func (r *PostgresRegistry) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM predicates WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting predicate %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	r.publish(ctx, ChangeEvent{Op: "deleted", Name: name, Timestamp: time.Now().UTC()})
	return nil
}

func (r *PostgresRegistry) HealthCheck(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) publish(ctx context.Context, event ChangeEvent) {
	if r.publisher == nil {
		return
	}
	_ = r.publisher.Publish(ctx, event)
}

func scanPredicate(row pgx.Row) (*StoredPredicate, error) {
	stored := &StoredPredicate{}
	if err := row.Scan(&stored.ID, &stored.Name, &stored.Source,
		&stored.Fingerprint, &stored.CreatedAt, &stored.UpdatedAt); err != nil {
		return nil, err
	}

	// Stored text is canonical and must always re-parse.
	parsed, err := cfgpred.Parse(stored.Source)
	if err != nil {
		return nil, fmt.Errorf("stored predicate %q no longer parses: %w", stored.Name, err)
	}
	stored.Predicate = parsed
	return stored, nil
}
