package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Liancohen0104/Rentmate/internal/config"
	"github.com/Liancohen0104/Rentmate/internal/model"
)

// ErrNotFound is returned by lookups for missing rows.
var ErrNotFound = eris.New("store: not found")

// ListingFilter specifies attribute criteria for SearchListings. City,
// neighborhood and property type match case-insensitive substrings;
// numeric bounds are inclusive and each side optional.
type ListingFilter struct {
	City         string   `json:"city,omitempty"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	PropertyType string   `json:"propertyType,omitempty"`
	MinPrice     *int     `json:"minPrice,omitempty"`
	MaxPrice     *int     `json:"maxPrice,omitempty"`
	MinRooms     *float64 `json:"minRooms,omitempty"`
	MaxRooms     *float64 `json:"maxRooms,omitempty"`
	MinSize      *int     `json:"minSize,omitempty"`
	MaxSize      *int     `json:"maxSize,omitempty"`
	MinFloor     *int     `json:"minFloor,omitempty"`
	MaxFloor     *int     `json:"maxFloor,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

// Store defines persistence for listings and user accounts.
type Store interface {
	// Listings
	UpsertListings(ctx context.Context, listings []model.Listing) (int, error)
	ListListings(ctx context.Context) ([]model.Listing, error)
	SearchListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error)

	// Users
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserName(ctx context.Context, id, firstName, lastName string) error
	UpdatePreferences(ctx context.Context, id string, prefs model.PreferenceProfile) error
	SetResetToken(ctx context.Context, email, token string, expires time.Time) error
	GetUserByResetToken(ctx context.Context, token string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres", "":
		return NewPostgres(ctx, cfg.DatabaseURL)
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
