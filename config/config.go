// Package config loads the run settings from flags, environment variables and an optional chain book file.
package config

import (
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ClipFinance/testnet-bridge/chains/evm/utils"
	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultRPCURL is used when neither the flags, the environment nor the database name an endpoint.
const DefaultRPCURL = "https://arb1.arbitrum.io/rpc"

// Settings holds everything a run needs apart from the chain book.
type Settings struct {
	RPCURL       string
	AccountsPath string
	Shuffle      bool

	MaxAttempts int
	RetryDelay  time.Duration
	PacingMin   time.Duration
	PacingMax   time.Duration
	FatalErrors []string

	AmountMin   *big.Int
	AmountMax   *big.Int
	Slippage    types.Ratio
	ValueBuffer types.Ratio

	ConfirmationTimeout time.Duration
	PollInterval        time.Duration
	WaitNBlocks         uint64
	MaxGasPriceGwei     uint64

	ChainBookPath string
	DatabaseURL   string
	ChainBookName string

	LogLevel logrus.Level
}

// option describes one setting: its flag name, environment key and default.
type option struct {
	flag  string
	env   string
	def   string
	usage string
}

var options = []option{
	{"rpc", "RPC_URL", "", "node RPC URL (http(s) or ws(s))"},
	{"accounts", "ACCOUNTS_PATH", "./privates.txt", "path of the private key list"},
	{"shuffle", "SHUFFLE", "true", "shuffle the accounts before the run"},
	{"max-attempts", "MAX_ATTEMPTS", "10", "attempt ceiling per account"},
	{"retry-delay", "RETRY_DELAY", "1s", "delay between attempts on the same account"},
	{"pacing-min", "PACING_MIN", "30s", "lower bound of the delay between accounts"},
	{"pacing-max", "PACING_MAX", "600s", "upper bound (exclusive) of the delay between accounts"},
	{"fatal-errors", "FATAL_ERRORS", "insufficient funds for gas", "comma separated error fragments that abandon an account"},
	{"amount-min", "AMOUNT_MIN", "0.0001", "lower bound of the input amount in ether"},
	{"amount-max", "AMOUNT_MAX", "0.0002", "upper bound (exclusive) of the input amount in ether"},
	{"slippage", "SLIPPAGE", types.DefaultSlippage.String(), "fraction of the quote accepted as minimum output"},
	{"value-buffer", "VALUE_BUFFER", types.DefaultValueBuffer.String(), "multiplier applied to the input amount for the sent value"},
	{"confirmation-timeout", "CONFIRMATION_TIMEOUT", "5m", "maximum wait for a receipt"},
	{"poll-interval", "POLL_INTERVAL", "2s", "receipt polling interval on HTTP endpoints"},
	{"wait-n-blocks", "WAIT_N_BLOCKS", "0", "extra blocks to wait after a transaction is mined"},
	{"max-gas-price-gwei", "MAX_GAS_PRICE_GWEI", "0", "gas price ceiling in gwei, 0 for none"},
	{"chain-book", "CHAIN_BOOK", "", "path of a TOML chain book"},
	{"database-url", "DATABASE_URL", "", "Postgres URL holding chain books and RPCs"},
	{"chain-book-name", "CHAIN_BOOK_NAME", "arbitrum", "name of the chain book in the database"},
	{"log-level", "LOG_LEVEL", "info", "log level"},
}

// Load parses the settings. Flags win over environment variables, which win over defaults.
//
// Parameters:
// - args: the command line arguments without the program name.
//
// Returns:
// - *Settings: the validated settings.
// - error: an error if any value cannot be parsed or the settings are inconsistent.
func Load(args []string) (*Settings, error) {
	fs := flag.NewFlagSet("testnet-bridge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	values := make(map[string]*string, len(options))
	for _, o := range options {
		values[o.env] = fs.String(o.flag, getenv(o.env, o.def), o.usage+" ("+o.env+")")
	}
	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "failed to parse flags")
	}

	p := &parser{values: values}
	s := &Settings{
		RPCURL:              p.str("RPC_URL"),
		AccountsPath:        p.str("ACCOUNTS_PATH"),
		Shuffle:             p.boolean("SHUFFLE"),
		MaxAttempts:         p.integer("MAX_ATTEMPTS"),
		RetryDelay:          p.duration("RETRY_DELAY"),
		PacingMin:           p.duration("PACING_MIN"),
		PacingMax:           p.duration("PACING_MAX"),
		FatalErrors:         splitCSV(p.str("FATAL_ERRORS")),
		AmountMin:           p.ether("AMOUNT_MIN"),
		AmountMax:           p.ether("AMOUNT_MAX"),
		Slippage:            p.ratio("SLIPPAGE"),
		ValueBuffer:         p.ratio("VALUE_BUFFER"),
		ConfirmationTimeout: p.duration("CONFIRMATION_TIMEOUT"),
		PollInterval:        p.duration("POLL_INTERVAL"),
		WaitNBlocks:         p.unsigned("WAIT_N_BLOCKS"),
		MaxGasPriceGwei:     p.unsigned("MAX_GAS_PRICE_GWEI"),
		ChainBookPath:       p.str("CHAIN_BOOK"),
		DatabaseURL:         p.str("DATABASE_URL"),
		ChainBookName:       p.str("CHAIN_BOOK_NAME"),
		LogLevel:            p.level("LOG_LEVEL"),
	}
	if p.err != nil {
		return nil, p.err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the relations between settings.
func (s *Settings) Validate() error {
	switch {
	case s.AccountsPath == "":
		return errors.New("accounts path is required")
	case s.MaxAttempts < 1:
		return errors.Errorf("max attempts must be at least 1, got %d", s.MaxAttempts)
	case s.RetryDelay < 0 || s.PacingMin < 0:
		return errors.New("delays must not be negative")
	case s.PacingMax < s.PacingMin:
		return errors.Errorf("pacing max %s is below pacing min %s", s.PacingMax, s.PacingMin)
	case s.AmountMin.Sign() <= 0:
		return errors.New("amount min must be positive")
	case s.AmountMax.Cmp(s.AmountMin) < 0:
		return errors.Errorf("amount max %s is below amount min %s", utils.FormatEther(s.AmountMax), utils.FormatEther(s.AmountMin))
	case s.ConfirmationTimeout <= 0:
		return errors.New("confirmation timeout must be positive")
	case s.PollInterval <= 0:
		return errors.New("poll interval must be positive")
	}

	if err := s.Slippage.ValidateFraction(); err != nil {
		return errors.Wrap(err, "invalid SLIPPAGE")
	}
	if err := s.ValueBuffer.ValidateMultiplier(); err != nil {
		return errors.Wrap(err, "invalid VALUE_BUFFER")
	}
	return nil
}

// NodeConfig returns the node settings for the chain with the given name.
func (s *Settings) NodeConfig(name, rpcURL string) *types.NodeConfig {
	config := &types.NodeConfig{
		Name:                name,
		RpcUrl:              rpcURL,
		WaitNBlocks:         s.WaitNBlocks,
		PollInterval:        s.PollInterval,
		ConfirmationTimeout: s.ConfirmationTimeout,
	}
	if s.MaxGasPriceGwei > 0 {
		config.GasPriceCeiling = utils.GweiToWei(s.MaxGasPriceGwei)
	}
	return config
}

// parser converts raw values and keeps the first error.
type parser struct {
	values map[string]*string
	err    error
}

func (p *parser) str(key string) string {
	return strings.TrimSpace(*p.values[key])
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = errors.Wrapf(err, "invalid %s %q", key, p.str(key))
	}
}

func (p *parser) boolean(key string) bool {
	v, err := strconv.ParseBool(p.str(key))
	if err != nil {
		p.fail(key, err)
	}
	return v
}

func (p *parser) integer(key string) int {
	v, err := strconv.Atoi(p.str(key))
	if err != nil {
		p.fail(key, err)
	}
	return v
}

func (p *parser) unsigned(key string) uint64 {
	v, err := strconv.ParseUint(p.str(key), 10, 64)
	if err != nil {
		p.fail(key, err)
	}
	return v
}

func (p *parser) duration(key string) time.Duration {
	v, err := time.ParseDuration(p.str(key))
	if err != nil {
		p.fail(key, err)
	}
	return v
}

func (p *parser) ether(key string) *big.Int {
	v, err := utils.ParseEther(p.str(key))
	if err != nil {
		p.fail(key, err)
		return new(big.Int)
	}
	return v
}

func (p *parser) ratio(key string) types.Ratio {
	v, err := types.ParseRatio(p.str(key))
	if err != nil {
		p.fail(key, err)
	}
	return v
}

func (p *parser) level(key string) logrus.Level {
	v, err := logrus.ParseLevel(p.str(key))
	if err != nil {
		p.fail(key, err)
	}
	return v
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// PrintUsage writes the flags, their environment keys and defaults to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage of testnet-bridge:")
	for _, o := range options {
		fmt.Fprintf(w, "  -%s (%s, default %q)\n    \t%s\n", o.flag, o.env, o.def, o.usage)
	}
}
