package dbconfig

import (
	"context"
	"database/sql"

	commonerrors "github.com/ClipFinance/testnet-bridge/common/errors"
	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/ClipFinance/testnet-bridge/config"
	"github.com/ClipFinance/testnet-bridge/dbconfig/models"
	"github.com/pkg/errors"
)

// GetChainBook returns the active chain book with the given name.
//
// Parameters:
// - ctx: the context for managing the request.
// - name: the name of the chain book.
//
// Returns:
// - *types.ChainBook: the validated chain book.
// - error: ErrChainBookNotFound if no active book has that name, ErrInvalidChainBook if
// the stored values are malformed, or ErrDatabaseConnect on database failures.
func (r *DBConfig) GetChainBook(ctx context.Context, name string) (*types.ChainBook, error) {
	if name == "" {
		return nil, errors.New("chain book name is required")
	}

	db, err := r.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var book models.ChainBook
	var zroPaymentAddress sql.NullString
	var adapterParams sql.NullString

	err = db.QueryRowContext(ctx, `
       SELECT
           id,
           name,
           chain_id,
           quoter,
           bridge,
           token_in,
           token_out,
           zro_payment_address,
           explorer_url,
           default_gas_limit,
           fee_tier,
           dst_chain_id,
           adapter_params,
           active,
           created_at,
           updated_at
       FROM chain_books
       WHERE name = $1 AND active = TRUE
    `, name).Scan(
		&book.ID,
		&book.Name,
		&book.ChainID,
		&book.Quoter,
		&book.Bridge,
		&book.TokenIn,
		&book.TokenOut,
		&zroPaymentAddress,
		&book.ExplorerURL,
		&book.DefaultGasLimit,
		&book.FeeTier,
		&book.DstChainID,
		&adapterParams,
		&book.Active,
		&book.CreatedAt,
		&book.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(commonerrors.ErrChainBookNotFound, "name %q", name)
	}

	if err != nil {
		return nil, errors.Wrapf(commonerrors.ErrDatabaseConnect, "query chain book: %v", err)
	}

	if zroPaymentAddress.Valid {
		book.ZroPaymentAddress = zroPaymentAddress.String
	}
	if adapterParams.Valid {
		book.AdapterParams = adapterParams.String
	}

	return chainBookFromModel(&book)
}

// chainBookFromModel converts a stored row into a validated chain book.
func chainBookFromModel(m *models.ChainBook) (*types.ChainBook, error) {
	record := config.ChainBookRecord{
		Name:              m.Name,
		ChainID:           m.ChainID,
		Quoter:            m.Quoter,
		Bridge:            m.Bridge,
		TokenIn:           m.TokenIn,
		TokenOut:          m.TokenOut,
		ZroPaymentAddress: m.ZroPaymentAddress,
		ExplorerURL:       m.ExplorerURL,
		DefaultGasLimit:   m.DefaultGasLimit,
		FeeTier:           m.FeeTier,
		DstChainID:        m.DstChainID,
		AdapterParams:     m.AdapterParams,
	}
	return record.ToChainBook()
}
