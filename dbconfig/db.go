package dbconfig

import (
	"database/sql"

	commonerrors "github.com/ClipFinance/testnet-bridge/common/errors"
	"github.com/pkg/errors"

	_ "github.com/lib/pq"
)

const driverName = "postgres"

// DBConfig reads chain books and RPC endpoints from Postgres.
type DBConfig struct {
	dbConnStr string
}

// NewDBConfig creates a new DBConfig instance with the provided connection string.
//
// Parameters:
// - connStr: the database connection string.
//
// Returns:
// - *DBConfig: a pointer to the newly created DBConfig instance.
// - error: an error if the connection string is empty.
func NewDBConfig(connStr string) (*DBConfig, error) {
	if connStr == "" {
		return nil, errors.New("database connection string is required")
	}

	return &DBConfig{
		dbConnStr: connStr,
	}, nil
}

// open opens a short-lived handle; callers close it when done.
func (r *DBConfig) open() (*sql.DB, error) {
	db, err := sql.Open(driverName, r.dbConnStr)
	if err != nil {
		return nil, errors.Wrapf(commonerrors.ErrDatabaseConnect, "%v", err)
	}
	return db, nil
}
