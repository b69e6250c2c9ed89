// Package repo stores users, saved soil profiles and calculation runs in
// PostgreSQL.
package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"Vsa/internal/calc/vsa"
)

var ErrNotFound = errors.New("repo: not found")

type Users interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetByLogin(ctx context.Context, login string) (int, string, error)
}

type SoilProfile struct {
	ID         int64       `json:"id"`
	UserID     int         `json:"user_id"`
	Name       string      `json:"name"`
	Layers     []vsa.Layer `json:"layers"`
	DefaultRho float64     `json:"default_rho"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Run is one stored calculation of a saved profile.
type Run struct {
	ID        uuid.UUID  `json:"id"`
	ProfileID int64      `json:"profile_id"`
	Result    vsa.Result `json:"result"`
	CreatedAt time.Time  `json:"created_at"`
}

type Profiles interface {
	ListProfiles(ctx context.Context, userID int) ([]SoilProfile, error)
	GetProfile(ctx context.Context, userID int, id int64) (SoilProfile, error)
	CreateProfile(ctx context.Context, p SoilProfile) (int64, error)
	DeleteProfile(ctx context.Context, userID int, id int64) error
	SaveRun(ctx context.Context, run Run) error
	ListRuns(ctx context.Context, userID int, profileID int64) ([]Run, error)
}

// DSN appends sslmode=require to a connection string that sets no mode.
func DSN(conn string) string {
	if conn == "" {
		conn = "user=postgres dbname=postgres password=password sslmode=disable"
	}
	if strings.Contains(conn, "sslmode=") {
		return conn
	}
	if strings.HasPrefix(conn, "postgres://") || strings.HasPrefix(conn, "postgresql://") {
		if strings.Contains(conn, "?") {
			return conn + "&sslmode=require"
		}
		return conn + "?sslmode=require"
	}
	return conn + " sslmode=require"
}

// Open connects and pings the database.
func Open(ctx context.Context, conn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", DSN(conn))
	if err != nil {
		return nil, fmt.Errorf("repo: open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo: ping: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id       SERIAL PRIMARY KEY,
	login    TEXT NOT NULL UNIQUE,
	email    TEXT NOT NULL,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS soil_profiles (
	id          BIGSERIAL PRIMARY KEY,
	user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	layers      JSONB NOT NULL,
	default_rho DOUBLE PRECISION NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS runs (
	id         UUID PRIMARY KEY,
	profile_id BIGINT NOT NULL REFERENCES soil_profiles(id) ON DELETE CASCADE,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS soil_profiles_user_idx ON soil_profiles (user_id);
CREATE INDEX IF NOT EXISTS runs_profile_idx ON runs (profile_id);
`

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (r *Postgres) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("repo: migrate: %w", err)
	}
	return nil
}

func (r *Postgres) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

func (r *Postgres) GetByLogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string
	query := "SELECT id, password FROM users WHERE login=$1"
	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrNotFound
	}
	if err != nil {
		return 0, "", err
	}
	return id, hash, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (SoilProfile, error) {
	var p SoilProfile
	var layers []byte
	if err := s.Scan(&p.ID, &p.UserID, &p.Name, &layers, &p.DefaultRho, &p.CreatedAt); err != nil {
		return SoilProfile{}, err
	}
	if err := json.Unmarshal(layers, &p.Layers); err != nil {
		return SoilProfile{}, fmt.Errorf("repo: profile %d layers: %w", p.ID, err)
	}
	return p, nil
}

const profileColumns = "id, user_id, name, layers, default_rho, created_at"

func (r *Postgres) ListProfiles(ctx context.Context, userID int) ([]SoilProfile, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM soil_profiles WHERE user_id=$1 ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SoilProfile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Postgres) GetProfile(ctx context.Context, userID int, id int64) (SoilProfile, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM soil_profiles WHERE id=$1 AND user_id=$2", id, userID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SoilProfile{}, ErrNotFound
	}
	return p, err
}

func (r *Postgres) CreateProfile(ctx context.Context, p SoilProfile) (int64, error) {
	layers, err := json.Marshal(p.Layers)
	if err != nil {
		return 0, err
	}
	var id int64
	query := "INSERT INTO soil_profiles (user_id, name, layers, default_rho) VALUES ($1, $2, $3, $4) RETURNING id"
	err = r.db.QueryRowContext(ctx, query, p.UserID, p.Name, layers, p.DefaultRho).Scan(&id)
	return id, err
}

func (r *Postgres) DeleteProfile(ctx context.Context, userID int, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM soil_profiles WHERE id=$1 AND user_id=$2", id, userID)
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

func (r *Postgres) SaveRun(ctx context.Context, run Run) error {
	result, err := json.Marshal(run.Result)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO runs (id, profile_id, result) VALUES ($1, $2, $3)", run.ID, run.ProfileID, result)
	return err
}

func (r *Postgres) ListRuns(ctx context.Context, userID int, profileID int64) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.profile_id, r.result, r.created_at
		FROM runs r JOIN soil_profiles p ON p.id = r.profile_id
		WHERE r.profile_id=$1 AND p.user_id=$2
		ORDER BY r.created_at DESC`, profileID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var run Run
		var result []byte
		if err := rows.Scan(&run.ID, &run.ProfileID, &result, &run.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(result, &run.Result); err != nil {
			return nil, fmt.Errorf("repo: run %s: %w", run.ID, err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
