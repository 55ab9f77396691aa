package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Liancohen0104/Rentmate/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Used for local
// development and tests; Postgres is the production backend.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// A single connection keeps writers serialized and makes :memory:
	// databases behave: every pooled connection would otherwise see its
	// own empty database.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS listings (
	id            INTEGER PRIMARY KEY,
	token         TEXT,
	original_url  TEXT,
	city          TEXT,
	area          TEXT,
	neighborhood  TEXT,
	street        TEXT,
	house_number  INTEGER,
	floor         INTEGER,
	lat           REAL,
	lon           REAL,
	price         INTEGER,
	price_before  INTEGER,
	property_type TEXT,
	rooms         REAL,
	size          INTEGER,
	condition_id  INTEGER,
	condition_text TEXT,
	cover_image   TEXT,
	images        TEXT NOT NULL DEFAULT '[]',
	tags          TEXT NOT NULL DEFAULT '[]',
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
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
	preferences    TEXT NOT NULL DEFAULT '{}',
	reset_token    TEXT,
	reset_expires  DATETIME,
	created_at     DATETIME NOT NULL,
	updated_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_reset_token ON users(reset_token);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertListings(ctx context.Context, listings []model.Listing) (int, error) {
	count := 0
	now := time.Now().UTC()
	for _, l := range listings {
		imagesJSON, err := json.Marshal(l.Images)
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: marshal images for %d", l.ID)
		}
		tagsJSON, err := json.Marshal(model.NormalizeTags(l.Tags))
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: marshal tags for %d", l.ID)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO listings (id, token, original_url, city, area, neighborhood, street, house_number,
				floor, lat, lon, price, price_before, property_type, rooms, size,
				condition_id, condition_text, cover_image, images, tags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				token = excluded.token, original_url = excluded.original_url,
				city = excluded.city, area = excluded.area, neighborhood = excluded.neighborhood,
				street = excluded.street, house_number = excluded.house_number,
				floor = excluded.floor, lat = excluded.lat, lon = excluded.lon,
				price = excluded.price, price_before = excluded.price_before,
				property_type = excluded.property_type, rooms = excluded.rooms,
				size = excluded.size, condition_id = excluded.condition_id,
				condition_text = excluded.condition_text, cover_image = excluded.cover_image,
				images = excluded.images, tags = excluded.tags, updated_at = excluded.updated_at`,
			l.ID, l.Token, l.OriginalURL, l.City, l.Area, l.Neighborhood, l.Street, l.HouseNumber,
			l.Floor, l.Lat, l.Lon, l.Price, l.PriceBefore, l.PropertyType, l.Rooms, l.Size,
			l.ConditionID, l.Condition, l.CoverImage, string(imagesJSON), string(tagsJSON), now, now,
		)
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: upsert listing %d", l.ID)
		}
		count++
	}
	return count, nil
}

func (s *SQLiteStore) ListListings(ctx context.Context) ([]model.Listing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list listings")
	}
	defer rows.Close()
	return scanListingsSQL(rows)
}

func (s *SQLiteStore) SearchListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE 1=1`
	var args []any

	if filter.City != "" {
		query += ` AND city LIKE ?`
		args = append(args, "%"+filter.City+"%")
	}
	if filter.Neighborhood != "" {
		query += ` AND neighborhood LIKE ?`
		args = append(args, "%"+filter.Neighborhood+"%")
	}
	if filter.PropertyType != "" {
		query += ` AND property_type LIKE ?`
		args = append(args, "%"+filter.PropertyType+"%")
	}
	if filter.MinPrice != nil {
		query += ` AND price >= ?`
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query += ` AND price <= ?`
		args = append(args, *filter.MaxPrice)
	}
	if filter.MinRooms != nil {
		query += ` AND rooms >= ?`
		args = append(args, *filter.MinRooms)
	}
	if filter.MaxRooms != nil {
		query += ` AND rooms <= ?`
		args = append(args, *filter.MaxRooms)
	}
	if filter.MinSize != nil {
		query += ` AND size >= ?`
		args = append(args, *filter.MinSize)
	}
	if filter.MaxSize != nil {
		query += ` AND size <= ?`
		args = append(args, *filter.MaxSize)
	}
	if filter.MinFloor != nil {
		query += ` AND floor >= ?`
		args = append(args, *filter.MinFloor)
	}
	if filter.MaxFloor != nil {
		query += ` AND floor <= ?`
		args = append(args, *filter.MaxFloor)
	}

	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search listings")
	}
	defer rows.Close()
	return scanListingsSQL(rows)
}

func scanListingsSQL(rows *sql.Rows) ([]model.Listing, error) {
	listings := []model.Listing{}
	for rows.Next() {
		var l model.Listing
		var token, originalURL, city, area, neighborhood, street, propertyType, conditionText, coverImage *string
		var imagesJSON, tagsJSON string

		err := rows.Scan(
			&l.ID, &token, &originalURL, &city, &area, &neighborhood, &street, &l.HouseNumber,
			&l.Floor, &l.Lat, &l.Lon, &l.Price, &l.PriceBefore, &propertyType, &l.Rooms, &l.Size,
			&l.ConditionID, &conditionText, &coverImage, &imagesJSON, &tagsJSON, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan listing")
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

		if imagesJSON != "" {
			if err := json.Unmarshal([]byte(imagesJSON), &l.Images); err != nil {
				return nil, eris.Wrapf(err, "sqlite: unmarshal images for %d", l.ID)
			}
		}
		if tagsJSON != "" {
			if err := json.Unmarshal([]byte(tagsJSON), &l.Tags); err != nil {
				return nil, eris.Wrapf(err, "sqlite: unmarshal tags for %d", l.ID)
			}
		}
		listings = append(listings, l)
	}
	return listings, eris.Wrap(rows.Err(), "sqlite: iterate listings")
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) error {
	prefsJSON, err := json.Marshal(user.Preferences)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal preferences")
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, preferences, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, string(prefsJSON), now, now,
	)
	return eris.Wrapf(err, "sqlite: insert user %s", user.Email)
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	)
	return scanUserSQL(row)
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	)
	return scanUserSQL(row)
}

func (s *SQLiteStore) GetUserByResetToken(ctx context.Context, token string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token = ? AND reset_expires > ?`,
		token, time.Now().UTC(),
	)
	return scanUserSQL(row)
}

func scanUserSQL(row *sql.Row) (*model.User, error) {
	var u model.User
	var firstName, lastName, resetToken *string
	var prefsJSON string

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &firstName, &lastName, &prefsJSON,
		&resetToken, &u.ResetTokenExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan user")
	}

	u.FirstName = deref(firstName)
	u.LastName = deref(lastName)
	u.ResetToken = deref(resetToken)
	if prefsJSON != "" {
		if err := json.Unmarshal([]byte(prefsJSON), &u.Preferences); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal preferences for %s", u.ID)
		}
	}
	return &u, nil
}

func (s *SQLiteStore) UpdateUserName(ctx context.Context, id, firstName, lastName string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, updated_at = ? WHERE id = ?`,
		firstName, lastName, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update user %s", id)
	}
	return checkAffected(res)
}

func (s *SQLiteStore) UpdatePreferences(ctx context.Context, id string, prefs model.PreferenceProfile) error {
	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal preferences")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET preferences = ?, updated_at = ? WHERE id = ?`,
		string(prefsJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update preferences %s", id)
	}
	return checkAffected(res)
}

func (s *SQLiteStore) SetResetToken(ctx context.Context, email, token string, expires time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET reset_token = ?, reset_expires = ?, updated_at = ? WHERE email = ?`,
		token, expires, time.Now().UTC(), strings.ToLower(strings.TrimSpace(email)),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set reset token for %s", email)
	}
	return checkAffected(res)
}

func (s *SQLiteStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, reset_token = NULL, reset_expires = NULL, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update password %s", id)
	}
	return checkAffected(res)
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete user %s", id)
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
