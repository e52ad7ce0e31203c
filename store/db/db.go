package db

import (
	"github.com/pkg/errors"

	"github.com/duetcast/duetcast/internal/profile"
	"github.com/duetcast/duetcast/store"
	"github.com/duetcast/duetcast/store/db/postgres"
	"github.com/duetcast/duetcast/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
//
// SQLite is the default for single-box deployments and development;
// PostgreSQL is for anything shared. Both drivers implement the full
// store.Driver surface.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver: %s (only 'sqlite' and 'postgres' are supported)", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
