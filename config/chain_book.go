package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	commonerrors "github.com/ClipFinance/testnet-bridge/common/errors"
	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

// ChainBookRecord is the textual form of a chain book, as stored in TOML files and the database.
type ChainBookRecord struct {
	Name              string `toml:"name"`
	ChainID           uint64 `toml:"chain_id"`
	Quoter            string `toml:"quoter"`
	Bridge            string `toml:"bridge"`
	TokenIn           string `toml:"token_in"`
	TokenOut          string `toml:"token_out"`
	ZroPaymentAddress string `toml:"zro_payment_address"`
	ExplorerURL       string `toml:"explorer_url"`
	DefaultGasLimit   uint64 `toml:"default_gas_limit"`
	FeeTier           uint32 `toml:"fee_tier"`
	DstChainID        uint16 `toml:"dst_chain_id"`
	AdapterParams     string `toml:"adapter_params"`
}

// DefaultChainBook returns the built-in Arbitrum book.
func DefaultChainBook() *types.ChainBook {
	return &types.ChainBook{
		Name:              "arbitrum",
		ChainID:           42161,
		Quoter:            common.HexToAddress("0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6"),
		Bridge:            common.HexToAddress("0x0A9f824C05A74F577A536A8A0c673183a872Dff4"),
		TokenIn:           common.HexToAddress("0x82af49447d8a07e3bd95bd0d56f35241523fbab1"),
		TokenOut:          common.HexToAddress("0xdd69db25f6d620a7bad3023c5d32761d353d3de9"),
		ZroPaymentAddress: common.Address{},
		ExplorerURL:       "https://arbiscan.io/",
		DefaultGasLimit:   200000,
		FeeTier:           0xbb8,
		DstChainID:        154,
		AdapterParams:     []byte{},
	}
}

// LoadChainBook decodes and validates a TOML chain book.
//
// Parameters:
// - path: the path of the TOML file.
//
// Returns:
// - *types.ChainBook: the validated book.
// - error: ErrInvalidChainBook if a value is malformed or missing, or a read/decode error.
func LoadChainBook(path string) (*types.ChainBook, error) {
	var record ChainBookRecord
	meta, err := toml.DecodeFile(path, &record)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode chain book %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Wrapf(commonerrors.ErrInvalidChainBook, "unknown keys %v in %s", undecoded, path)
	}

	return record.ToChainBook()
}

// ToChainBook converts the record and validates the result.
func (r *ChainBookRecord) ToChainBook() (*types.ChainBook, error) {
	book := &types.ChainBook{
		Name:            r.Name,
		ChainID:         r.ChainID,
		ExplorerURL:     strings.TrimSpace(r.ExplorerURL),
		DefaultGasLimit: r.DefaultGasLimit,
		FeeTier:         r.FeeTier,
		DstChainID:      r.DstChainID,
	}
	if book.ExplorerURL != "" && !strings.HasSuffix(book.ExplorerURL, "/") {
		book.ExplorerURL += "/"
	}

	addresses := []struct {
		name  string
		raw   string
		dst   *common.Address
		empty bool
	}{
		{"quoter", r.Quoter, &book.Quoter, false},
		{"bridge", r.Bridge, &book.Bridge, false},
		{"token_in", r.TokenIn, &book.TokenIn, false},
		{"token_out", r.TokenOut, &book.TokenOut, false},
		{"zro_payment_address", r.ZroPaymentAddress, &book.ZroPaymentAddress, true},
	}
	for _, a := range addresses {
		raw := strings.TrimSpace(a.raw)
		if raw == "" && a.empty {
			continue
		}
		if !common.IsHexAddress(raw) {
			return nil, errors.Wrapf(commonerrors.ErrInvalidChainBook, "%s %q is not an address", a.name, a.raw)
		}
		*a.dst = common.HexToAddress(raw)
	}

	book.AdapterParams = []byte{}
	if raw := strings.TrimSpace(r.AdapterParams); raw != "" {
		params, err := hexutil.Decode(raw)
		if err != nil {
			return nil, errors.Wrapf(commonerrors.ErrInvalidChainBook, "adapter_params %q: %v", raw, err)
		}
		book.AdapterParams = params
	}

	if err := book.Validate(); err != nil {
		return nil, errors.Wrap(commonerrors.ErrInvalidChainBook, err.Error())
	}
	return book, nil
}
