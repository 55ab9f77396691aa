package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/Liancohen0104/Rentmate/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS listings (
	id            BIGINT PRIMARY KEY,
	token         TEXT,
	original_url  TEXT,
	city          TEXT,
	area          TEXT,
	neighborhood  TEXT,
	street        TEXT,
	house_number  INTEGER,
	floor         INTEGER,
	lat           DOUBLE PRECISION,
	lon           DOUBLE PRECISION,
	price         INTEGER,
	price_before  INTEGER,
	property_type TEXT,
	rooms         DOUBLE PRECISION,
	size          INTEGER,
	condition_id  INTEGER,
	condition_text TEXT,
	cover_image   TEXT,
	images        JSONB NOT NULL DEFAULT '[]',
	tags          JSONB NOT NULL DEFAULT '[]',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_listings_city ON listings(city);
CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);
CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at DESC);

CREATE TABLE IF NOT EXISTS users (
	id             TEXT PRIMARY KEY,
	email          TEXT NOT NULL UNIQUE,
	password_hash  TEXT NOT NULL,
	first_name     TEXT,
	last_name      TEXT,
	preferences    JSONB NOT NULL DEFAULT '{}',
	reset_token    TEXT,
	reset_expires  TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE INDEX IF NOT EXISTS idx_users_reset_token ON users(reset_token);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const listingColumns = `id, token, original_url, city, area, neighborhood, street, house_number,
	floor, lat, lon, price, price_before, property_type, rooms, size,
	condition_id, condition_text, cover_image, images, tags, created_at, updated_at`

func (s *PostgresStore) UpsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	count := 0
	now := time.Now().UTC()
	for _, l := range listings {
		imagesJSON, err := json.Marshal(l.Images)
		if err != nil {
			return count, eris.Wrapf(err, "postgres: marshal images for %d", l.ID)
		}
		tagsJSON, err := json.Marshal(model.NormalizeTags(l.Tags))
		if err != nil {
			return count, eris.Wrapf(err, "postgres: marshal tags for %d", l.ID)
		}

		_, err = s.pool.Exec(ctx, `
			INSERT INTO listings (id, token, original_url, city, area, neighborhood, street, house_number,
				floor, lat, lon, price, price_before, property_type, rooms, size,
				condition_id, condition_text, cover_image, images, tags, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $22)
			ON CONFLICT (id) DO UPDATE SET
				token = EXCLUDED.token, original_url = EXCLUDED.original_url,
				city = EXCLUDED.city, area = EXCLUDED.area, neighborhood = EXCLUDED.neighborhood,
				street = EXCLUDED.street, house_number = EXCLUDED.house_number,
				floor = EXCLUDED.floor, lat = EXCLUDED.lat, lon = EXCLUDED.lon,
				price = EXCLUDED.price, price_before = EXCLUDED.price_before,
				property_type = EXCLUDED.property_type, rooms = EXCLUDED.rooms,
				size = EXCLUDED.size, condition_id = EXCLUDED.condition_id,
				condition_text = EXCLUDED.condition_text, cover_image = EXCLUDED.cover_image,
				images = EXCLUDED.images, tags = EXCLUDED.tags, updated_at = EXCLUDED.updated_at`,
			l.ID, l.Token, l.OriginalURL, l.City, l.Area, l.Neighborhood, l.Street, l.HouseNumber,
			l.Floor, l.Lat, l.Lon, l.Price, l.PriceBefore, l.PropertyType, l.Rooms, l.Size,
			l.ConditionID, l.Condition, l.CoverImage, imagesJSON, tagsJSON, now,
		)
		if err != nil {
			return count, eris.Wrapf(err, "postgres: upsert listing %d", l.ID)
		}
		count++
	}
	return count, nil
}

func (s *PostgresStore) ListListings(ctx context.Context) ([]model.Listing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+listingColumns+` FROM listings ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list listings")
	}
	defer rows.Close()
	return scanListings(rows)
}

func (s *PostgresStore) SearchListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.City != "" {
		query += ` AND city ILIKE ` + arg("%"+filter.City+"%")
	}
	if filter.Neighborhood != "" {
		query += ` AND neighborhood ILIKE ` + arg("%"+filter.Neighborhood+"%")
	}
	if filter.PropertyType != "" {
		query += ` AND property_type ILIKE ` + arg("%"+filter.PropertyType+"%")
	}
	if filter.MinPrice != nil {
		query += ` AND price >= ` + arg(*filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query += ` AND price <= ` + arg(*filter.MaxPrice)
	}
	if filter.MinRooms != nil {
		query += ` AND rooms >= ` + arg(*filter.MinRooms)
	}
	if filter.MaxRooms != nil {
		query += ` AND rooms <= ` + arg(*filter.MaxRooms)
	}
	if filter.MinSize != nil {
		query += ` AND size >= ` + arg(*filter.MinSize)
	}
	if filter.MaxSize != nil {
		query += ` AND size <= ` + arg(*filter.MaxSize)
	}
	if filter.MinFloor != nil {
		query += ` AND floor >= ` + arg(*filter.MinFloor)
	}
	if filter.MaxFloor != nil {
		query += ` AND floor <= ` + arg(*filter.MaxFloor)
	}

	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search listings")
	}
	defer rows.Close()
	return scanListings(rows)
}

// scanListings reads listing rows from either backend's result set.
func scanListings(rows pgx.Rows) ([]model.Listing, error) {
	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	return listings, eris.Wrap(rows.Err(), "postgres: iterate listings")
}

func scanListing(row pgx.Row) (*model.Listing, error) {
	var l model.Listing
	var token, originalURL, city, area, neighborhood, street, propertyType, conditionText, coverImage *string
	var imagesJSON, tagsJSON []byte

	err := row.Scan(
		&l.ID, &token, &originalURL, &city, &area, &neighborhood, &street, &l.HouseNumber,
		&l.Floor, &l.Lat, &l.Lon, &l.Price, &l.PriceBefore, &propertyType, &l.Rooms, &l.Size,
		&l.ConditionID, &conditionText, &coverImage, &imagesJSON, &tagsJSON, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan listing")
	}

	l.Token = deref(token)
	l.OriginalURL = deref(originalURL)
	l.City = deref(city)
	l.Area = deref(area)
	l.Neighborhood = deref(neighborhood)
	l.Street = deref(street)
	l.PropertyType = deref(propertyType)
	l.Condition = deref(conditionText)
	l.CoverImage = deref(coverImage)

	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &l.Images); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal images for %d", l.ID)
		}
	}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &l.Tags); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal tags for %d", l.ID)
		}
	}
	return &l, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

const userColumns = `id, email, password_hash, first_name, last_name, preferences,
	reset_token, reset_expires, created_at, updated_at`

func (s *PostgresStore) CreateUser(ctx context.Context, user *model.User) error {
	prefsJSON, err := json.Marshal(user.Preferences)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal preferences")
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, prefsJSON, now,
	)
	return eris.Wrapf(err, "postgres: insert user %s", user.Email)
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByResetToken(ctx context.Context, token string) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token = $1 AND reset_expires > now()`,
		token,
	)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var firstName, lastName, resetToken *string
	var prefsJSON []byte

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &firstName, &lastName, &prefsJSON,
		&resetToken, &u.ResetTokenExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan user")
	}

	u.FirstName = deref(firstName)
	u.LastName = deref(lastName)
	u.ResetToken = deref(resetToken)
	if len(prefsJSON) > 0 {
		if err := json.Unmarshal(prefsJSON, &u.Preferences); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal preferences for %s", u.ID)
		}
	}
	return &u, nil
}

func (s *PostgresStore) UpdateUserName(ctx context.Context, id, firstName, lastName string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET first_name = $1, last_name = $2, updated_at = $3 WHERE id = $4`,
		firstName, lastName, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update user %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdatePreferences(ctx context.Context, id string, prefs model.PreferenceProfile) error {
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal preferences")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET preferences = $1, updated_at = $2 WHERE id = $3`,
		prefsJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update preferences %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete user %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetResetToken(ctx context.Context, email, token string, expires time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET reset_token = $1, reset_expires = $2, updated_at = $3 WHERE email = $4`,
		token, expires, time.Now().UTC(), strings.ToLower(strings.TrimSpace(email)),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set reset token for %s", email)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, reset_token = NULL, reset_expires = NULL, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update password %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
