package signer

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Signer is a private-key backed account that signs transactions.
type Signer interface {
	// SignTx signs the given transaction with the specified chain ID and returns the signed transaction.
	//
	// Parameters:
	// - transaction: the transaction to be signed.
	// - chainID: the chain ID for the transaction.
	//
	// Returns:
	// - *ethtypes.Transaction: the signed transaction.
	// - error: an error if the signing process fails.
	SignTx(transaction *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error)

	// Address returns the signer's address.
	//
	// Returns:
	// - common.Address: the signer's address.
	Address() common.Address
}

// signer is a concrete implementation of the Signer interface.
// It holds no mutable state, so signing never touches anything shared.
type signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewSigner creates a new signer instance with the given private key.
//
// Parameters:
// - privateKey: the private key to be used for signing.
//
// Returns:
// - Signer: a new signer instance.
// - error: an error if the private key is not valid.
func NewSigner(privateKey *ecdsa.PrivateKey) (Signer, error) {
	if privateKey == nil {
		return nil, errors.New("private key is nil")
	}

	pubKeyECDSA, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("cannot assign public key to ECDSA")
	}

	return &signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(*pubKeyECDSA),
	}, nil
}

// FromHex creates a signer from a hex-encoded private key, with or without the 0x prefix.
//
// Parameters:
// - raw: the hex-encoded private key.
//
// Returns:
// - Signer: a new signer instance.
// - error: an error if the key cannot be decoded.
func FromHex(raw string) (Signer, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	if raw == "" {
		return nil, errors.New("empty private key")
	}

	privKey, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse private key")
	}

	return NewSigner(privKey)
}

// Address returns the signer's address.
//
// Returns:
// - common.Address: the signer's address.
func (s *signer) Address() common.Address {
	return s.address
}

// SignTx signs the given transaction with the specified chain ID and returns the signed transaction.
//
// Parameters:
// - tx: the transaction to be signed.
// - chainID: the chain ID for the transaction.
//
// Returns:
// - *ethtypes.Transaction: the signed transaction.
// - error: an error if the signing process fails.
func (s *signer) SignTx(tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(s.privateKey, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create keyed transactor")
	}

	signedTx, err := auth.Signer(s.address, tx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	return signedTx, nil
}
