package main

import (
	"context"

	commonerrors "github.com/ClipFinance/testnet-bridge/common/errors"
	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/ClipFinance/testnet-bridge/config"
	"github.com/ClipFinance/testnet-bridge/dbconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// resolveChainBook picks the chain book from Postgres, then the TOML file, then the built-in default.
// A book missing from the database falls through; any other database error is returned.
func resolveChainBook(ctx context.Context, s *config.Settings, logger *logrus.Logger) (*types.ChainBook, error) {
	if s.DatabaseURL != "" {
		db, err := dbconfig.NewDBConfig(s.DatabaseURL)
		if err != nil {
			return nil, err
		}

		book, err := db.GetChainBook(ctx, s.ChainBookName)
		switch {
		case err == nil:
			logger.WithField("name", book.Name).Info("Chain book loaded from database")
			return book, nil
		case errors.Is(err, commonerrors.ErrChainBookNotFound):
			logger.WithField("name", s.ChainBookName).Warn("Chain book not found in database")
		default:
			return nil, err
		}
	}

	if s.ChainBookPath != "" {
		book, err := config.LoadChainBook(s.ChainBookPath)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"name": book.Name,
			"path": s.ChainBookPath,
		}).Info("Chain book loaded from file")
		return book, nil
	}

	book := config.DefaultChainBook()
	logger.WithField("name", book.Name).Info("Using built-in chain book")
	return book, nil
}

// resolveRPCURL picks the RPC from the settings, then the newest active database entry for the
// book's chain, then the default endpoint.
func resolveRPCURL(ctx context.Context, s *config.Settings, book *types.ChainBook, logger *logrus.Logger) (string, error) {
	if s.RPCURL != "" {
		return s.RPCURL, nil
	}

	if s.DatabaseURL != "" {
		db, err := dbconfig.NewDBConfig(s.DatabaseURL)
		if err != nil {
			return "", err
		}

		url, err := db.GetActiveRPCURL(ctx, book.ChainID)
		switch {
		case err == nil:
			return url, nil
		case errors.Is(err, commonerrors.ErrRPCNotFound):
			logger.WithField("chainId", book.ChainID).Warn("No active RPC in database")
		default:
			return "", err
		}
	}

	return config.DefaultRPCURL, nil
}
