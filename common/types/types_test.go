package types

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestRatio_Apply(t *testing.T) {
	t.Run("quote_1000_keeps_940", func(t *testing.T) {
		require.Equal(t, "940", DefaultSlippage.Apply(big.NewInt(1000)).String())
	})

	t.Run("value_buffer_inflates_by_20_percent", func(t *testing.T) {
		require.Equal(t, "120000000000000", DefaultValueBuffer.Apply(big.NewInt(100_000_000_000_000)).String())
	})

	t.Run("floors", func(t *testing.T) {
		require.Equal(t, "93", DefaultSlippage.Apply(big.NewInt(99)).String())
	})

	t.Run("does_not_mutate_input", func(t *testing.T) {
		in := big.NewInt(1000)
		DefaultSlippage.Apply(in)
		require.Equal(t, "1000", in.String())
	})
}

func TestRatio_SlippageNeverExceedsQuote(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		den := uint64(rng.Intn(10_000) + 1)
		num := uint64(rng.Intn(int(den))) + 1
		r := Ratio{Numerator: num, Denominator: den}
		require.NoError(t, r.ValidateFraction())

		out := new(big.Int).Rand(rng, new(big.Int).Lsh(big.NewInt(1), 200))
		outMin := r.Apply(out)

		expected := new(big.Int).Div(new(big.Int).Mul(out, new(big.Int).SetUint64(num)), new(big.Int).SetUint64(den))
		require.Equal(t, 0, expected.Cmp(outMin))
		require.LessOrEqual(t, outMin.Cmp(out), 0)
	}
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		in      string
		want    Ratio
		wantErr bool
	}{
		{in: "94/100", want: Ratio{Numerator: 94, Denominator: 100}},
		{in: " 120 / 100 ", want: Ratio{Numerator: 120, Denominator: 100}},
		{in: "1/0", wantErr: true},
		{in: "94", wantErr: true},
		{in: "a/100", wantErr: true},
		{in: "1/2/3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRatio(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRatio_Validate(t *testing.T) {
	require.NoError(t, DefaultSlippage.ValidateFraction())
	require.Error(t, Ratio{Numerator: 0, Denominator: 100}.ValidateFraction())
	require.Error(t, Ratio{Numerator: 101, Denominator: 100}.ValidateFraction())

	require.NoError(t, DefaultValueBuffer.ValidateMultiplier())
	require.Error(t, Ratio{Numerator: 99, Denominator: 100}.ValidateMultiplier())
	require.Error(t, Ratio{Numerator: 1, Denominator: 0}.ValidateMultiplier())
}

func TestUnsignedTransaction_ToTransaction(t *testing.T) {
	to := common.HexToAddress("0x0A9f824C05A74F577A536A8A0c673183a872Dff4")
	unsigned := &UnsignedTransaction{
		From:                 common.HexToAddress("0x1"),
		To:                   to,
		Value:                big.NewInt(12345),
		Data:                 []byte{0xde, 0xad},
		Nonce:                7,
		ChainID:              big.NewInt(42161),
		GasLimit:             180000,
		MaxPriorityFeePerGas: big.NewInt(100),
		MaxFeePerGas:         big.NewInt(100),
	}

	tx := unsigned.ToTransaction()
	require.Equal(t, uint8(2), tx.Type())
	require.Equal(t, to, *tx.To())
	require.Equal(t, "12345", tx.Value().String())
	require.Equal(t, []byte{0xde, 0xad}, tx.Data())
	require.Equal(t, uint64(7), tx.Nonce())
	require.Equal(t, "42161", tx.ChainId().String())
	require.Equal(t, uint64(180000), tx.Gas())
	require.Equal(t, "100", tx.GasTipCap().String())
	require.Equal(t, "100", tx.GasFeeCap().String())
}

func TestChainBook_TxURL(t *testing.T) {
	book := &ChainBook{ExplorerURL: "https://arbiscan.io/"}
	hash := common.HexToHash("0xabc")
	require.Equal(t, "https://arbiscan.io/tx/"+hash.Hex(), book.TxURL(hash))
}

func TestGetReceiptMode(t *testing.T) {
	require.Equal(t, NewHeadMode, GetReceiptMode("wss://arb1.example"))
	require.Equal(t, NewHeadMode, GetReceiptMode("ws://localhost:8546"))
	require.Equal(t, PollingMode, GetReceiptMode("https://arb1.arbitrum.io/rpc"))
}

func TestChainBook_Validate(t *testing.T) {
	valid := func() *ChainBook {
		return &ChainBook{
			Name:            "arbitrum",
			ChainID:         42161,
			Quoter:          common.HexToAddress("0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6"),
			Bridge:          common.HexToAddress("0x0A9f824C05A74F577A536A8A0c673183a872Dff4"),
			TokenIn:         common.HexToAddress("0x82af49447d8a07e3bd95bd0d56f35241523fbab1"),
			TokenOut:        common.HexToAddress("0xdd69db25f6d620a7bad3023c5d32761d353d3de9"),
			ExplorerURL:     "https://arbiscan.io/",
			DefaultGasLimit: 200000,
			FeeTier:         3000,
			DstChainID:      154,
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(b *ChainBook)
	}{
		{"missing_chain_id", func(b *ChainBook) { b.ChainID = 0 }},
		{"missing_quoter", func(b *ChainBook) { b.Quoter = common.Address{} }},
		{"missing_bridge", func(b *ChainBook) { b.Bridge = common.Address{} }},
		{"missing_token", func(b *ChainBook) { b.TokenOut = common.Address{} }},
		{"fee_tier_overflow", func(b *ChainBook) { b.FeeTier = 1 << 24 }},
		{"zero_gas_limit", func(b *ChainBook) { b.DefaultGasLimit = 0 }},
		{"zero_destination", func(b *ChainBook) { b.DstChainID = 0 }},
		{"explorer_without_slash", func(b *ChainBook) { b.ExplorerURL = "https://arbiscan.io" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := valid()
			tt.mutate(book)
			require.Error(t, book.Validate())
		})
	}
}
