package dbconfig

import (
	"context"
	"database/sql"

	commonerrors "github.com/ClipFinance/testnet-bridge/common/errors"
	"github.com/ClipFinance/testnet-bridge/dbconfig/models"
	"github.com/pkg/errors"
)

// GetRPCsByChainID returns all RPCs for a given chain ID from the database, optionally filtering by active status.
//
// Parameters:
// - ctx: the context for managing the request.
// - chainID: the unique identifier for the chain.
// - activeOnly: a boolean flag to filter only active RPCs.
//
// Returns:
// - []models.RPC: a slice of RPC models, newest first.
// - error: an error if the database operation fails.
func (r *DBConfig) GetRPCsByChainID(ctx context.Context, chainID uint64, activeOnly bool) ([]models.RPC, error) {
	if chainID == 0 {
		return nil, commonerrors.ErrInvalidChainID
	}

	db, err := r.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := `
  		SELECT 
  			id,
			chain_id,
			url,
			provider,
			active,
			created_at,
			updated_at
		FROM rpcs
		WHERE chain_id = $1
   `

	args := []interface{}{chainID}
	if activeOnly {
		query += " AND active = $2"
		args = append(args, true)
	}

	query += " ORDER BY created_at DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(commonerrors.ErrDatabaseConnect, "query rpcs: %v", err)
	}
	defer rows.Close()

	var rpcs []models.RPC
	for rows.Next() {
		var rpc models.RPC
		var provider sql.NullString

		err := rows.Scan(
			&rpc.ID,
			&rpc.ChainID,
			&rpc.URL,
			&provider,
			&rpc.Active,
			&rpc.CreatedAt,
			&rpc.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrapf(commonerrors.ErrDatabaseConnect, "scan rpc: %v", err)
		}

		if provider.Valid {
			rpc.Provider = provider.String
		}

		rpcs = append(rpcs, rpc)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(commonerrors.ErrDatabaseConnect, "iterate rpcs: %v", err)
	}

	return rpcs, nil
}

// GetActiveRPCURL returns the URL of the newest active RPC for the chain.
//
// Parameters:
// - ctx: the context for managing the request.
// - chainID: the unique identifier for the chain.
//
// Returns:
// - string: the RPC URL.
// - error: ErrRPCNotFound if the chain has no active RPC, or a database error.
func (r *DBConfig) GetActiveRPCURL(ctx context.Context, chainID uint64) (string, error) {
	rpcs, err := r.GetRPCsByChainID(ctx, chainID, true)
	if err != nil {
		return "", err
	}

	url, ok := firstRPCURL(rpcs)
	if !ok {
		return "", errors.Wrapf(commonerrors.ErrRPCNotFound, "chain %d", chainID)
	}
	return url, nil
}

// firstRPCURL returns the first non-empty URL.
func firstRPCURL(rpcs []models.RPC) (string, bool) {
	for _, rpc := range rpcs {
		if rpc.URL != "" {
			return rpc.URL, true
		}
	}
	return "", false
}
