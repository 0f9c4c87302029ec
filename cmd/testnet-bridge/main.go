package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClipFinance/testnet-bridge/accounts"
	"github.com/ClipFinance/testnet-bridge/bridge"
	"github.com/ClipFinance/testnet-bridge/chains/evm"
	"github.com/ClipFinance/testnet-bridge/chains/evm/utils"
	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/ClipFinance/testnet-bridge/config"
	"github.com/ClipFinance/testnet-bridge/pacing"
	"github.com/ClipFinance/testnet-bridge/retry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	exitOK       = 0
	exitConfig   = 1
	exitAccounts = 2
)

// Random streams derived from the run seed. Each consumer owns its source.
const (
	streamShuffle int64 = iota
	streamAmounts
	streamPacing
)

// newRand returns the random source of one stream of the run.
func newRand(seed, stream int64) *rand.Rand {
	return rand.New(rand.NewSource(seed + stream))
}

// logConnection reports the node and the first account's balance. A failure is
// only a warning: node errors are retried per account.
func logConnection(ctx context.Context, chain types.BalanceProvider, address common.Address, name, rpcURL string, logger *logrus.Logger) {
	log := logger.WithFields(logrus.Fields{
		"rpc":     rpcURL,
		"chain":   name,
		"address": address.Hex(),
	})

	balance, err := chain.GetBalance(ctx, address)
	if err != nil {
		log.WithError(err).Warn("Initial balance check failed")
		return
	}
	log.WithField("balance", utils.FormatEther(balance)).Info("Connected to node")
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	settings, err := config.Load(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			config.PrintUsage(os.Stderr)
			return exitOK
		}
		logger.WithError(err).Error("Invalid configuration")
		return exitConfig
	}
	logger.SetLevel(settings.LogLevel)

	accs, err := accounts.LoadFile(settings.AccountsPath)
	if err != nil {
		logger.WithError(err).WithField("path", settings.AccountsPath).Error("Failed to load accounts")
		return exitAccounts
	}

	seed := time.Now().UnixNano()
	if settings.Shuffle {
		accounts.Shuffle(accs, newRand(seed, streamShuffle))
	}
	logger.WithFields(logrus.Fields{
		"count":    len(accs),
		"shuffled": settings.Shuffle,
	}).Info("Accounts loaded")

	if len(accs) == 0 {
		logger.Warn("No accounts to process")
		return exitOK
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	book, err := resolveChainBook(ctx, settings, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to resolve chain book")
		return exitConfig
	}

	rpcURL, err := resolveRPCURL(ctx, settings, book, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to resolve RPC URL")
		return exitConfig
	}

	chain, err := evm.NewEvmChain(ctx, settings.NodeConfig(book.Name, rpcURL), logger)
	if err != nil {
		logger.WithError(err).WithField("rpc", rpcURL).Error("Failed to open RPC client")
		return exitConfig
	}
	defer chain.Close()

	logConnection(ctx, chain, accs[0].Address(), book.Name, rpcURL, logger)

	operation, err := bridge.NewOperation(chain, book, bridge.Params{
		AmountMin:   settings.AmountMin,
		AmountMax:   settings.AmountMax,
		Slippage:    settings.Slippage,
		ValueBuffer: settings.ValueBuffer,
	}, newRand(seed, streamAmounts), logger)
	if err != nil {
		logger.WithError(err).Error("Invalid bridge parameters")
		return exitConfig
	}

	pacer, err := pacing.NewScheduler(settings.PacingMin, settings.PacingMax, settings.RetryDelay, newRand(seed, streamPacing), logger)
	if err != nil {
		logger.WithError(err).Error("Invalid pacing parameters")
		return exitConfig
	}

	orchestrator := retry.NewOrchestrator(
		operation,
		retry.NewSubstringClassifier(settings.FatalErrors),
		pacer,
		settings.MaxAttempts,
		logger,
	)

	list := make([]types.Account, 0, len(accs))
	for _, a := range accs {
		list = append(list, a)
	}

	summary := orchestrator.Run(ctx, list)
	if ctx.Err() != nil {
		logger.WithField("skipped", summary.Skipped).Warn("Run interrupted")
	}

	return exitOK
}
