package dbconfig

import (
	"context"
	"testing"

	commonerrors "github.com/ClipFinance/testnet-bridge/common/errors"
	"github.com/ClipFinance/testnet-bridge/dbconfig/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestNewDBConfig(t *testing.T) {
	_, err := NewDBConfig("")
	require.Error(t, err)

	cfg, err := NewDBConfig("postgres://localhost/bridge?sslmode=disable")
	require.NoError(t, err)
	require.NotNil(t, cfg)
}

func TestChainBookFromModel(t *testing.T) {
	row := &models.ChainBook{
		Name:            "arbitrum",
		ChainID:         42161,
		Quoter:          "0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6",
		Bridge:          "0x0A9f824C05A74F577A536A8A0c673183a872Dff4",
		TokenIn:         "0x82af49447d8a07e3bd95bd0d56f35241523fbab1",
		TokenOut:        "0xdd69db25f6d620a7bad3023c5d32761d353d3de9",
		ExplorerURL:     "https://arbiscan.io/",
		DefaultGasLimit: 200000,
		FeeTier:         3000,
		DstChainID:      154,
		AdapterParams:   "0x",
		Active:          true,
	}

	t.Run("valid_row", func(t *testing.T) {
		book, err := chainBookFromModel(row)
		require.NoError(t, err)
		require.Equal(t, common.HexToAddress(row.Quoter), book.Quoter)
		require.Equal(t, uint16(154), book.DstChainID)
		require.Empty(t, book.AdapterParams)
		require.Equal(t, common.Address{}, book.ZroPaymentAddress)
	})

	t.Run("malformed_row", func(t *testing.T) {
		bad := *row
		bad.TokenIn = "weth"
		_, err := chainBookFromModel(&bad)
		require.ErrorIs(t, err, commonerrors.ErrInvalidChainBook)
	})
}

func TestFirstRPCURL(t *testing.T) {
	url, ok := firstRPCURL([]models.RPC{{URL: ""}, {URL: "https://arb1.arbitrum.io/rpc"}})
	require.True(t, ok)
	require.Equal(t, "https://arb1.arbitrum.io/rpc", url)

	_, ok = firstRPCURL(nil)
	require.False(t, ok)
}

func TestGetRPCsByChainID_InvalidChainID(t *testing.T) {
	cfg, err := NewDBConfig("postgres://localhost/bridge?sslmode=disable")
	require.NoError(t, err)

	_, err = cfg.GetRPCsByChainID(context.Background(), 0, true)
	require.ErrorIs(t, err, commonerrors.ErrInvalidChainID)
}
