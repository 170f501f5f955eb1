package principals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/videotube/internal/common"
	"github.com/dmitrijs2005/videotube/internal/server/migrations"
	"github.com/dmitrijs2005/videotube/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const (
	pgUniqueViolation           = "23505"
	pgInvalidTextRepresentation = "22P02"
)

// DBTX is the subset of database/sql used by the repository.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type PostgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Principal) (*models.Principal, error) {

	query :=
		`INSERT INTO users (id, username, email, full_name, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Username, p.Email, p.FullName, p.PasswordHash).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return nil, mapPgError(err)
	}

	return p, nil
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.Principal, error) {
	query :=
		`SELECT id, username, email, full_name, password_hash, COALESCE(refresh_token, ''), created_at, updated_at
		 FROM users
		 WHERE username = $1 OR email = $1
		 LIMIT 1
		 `

	return r.getPrincipal(ctx, query, login)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Principal, error) {
	query :=
		`SELECT id, username, email, full_name, password_hash, COALESCE(refresh_token, ''), created_at, updated_at
		 FROM users
		 WHERE id = $1
		 `

	return r.getPrincipal(ctx, query, id)
}

func (r *PostgresRepository) getPrincipal(ctx context.Context, query string, arg string) (*models.Principal, error) {
	p := &models.Principal{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.Username, &p.Email, &p.FullName, &p.PasswordHash, &p.RefreshToken, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return nil, mapPgError(err)
	}

	return p, nil
}

func (r *PostgresRepository) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	query :=
		`SELECT id, username, email, full_name, created_at, updated_at
		 FROM users
		 WHERE id = $1
		 `

	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Username, &p.Email, &p.FullName, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return nil, mapPgError(err)
	}

	return p, nil
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	query :=
		`UPDATE users SET refresh_token = NULLIF($2, ''), updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return mapPgError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

// mapPgError translates driver errors into the repository sentinels.
// A malformed UUID cannot match any row, so it is reported as not found.
func mapPgError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", common.ErrAlreadyExists, pgErr.ConstraintName)
		case pgInvalidTextRepresentation:
			return common.ErrorNotFound
		}
	}

	return fmt.Errorf("db error: %w", err)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
