// Package accounts decodes the list of signing accounts the operator works through.
package accounts

import (
	"bufio"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/ClipFinance/testnet-bridge/chains/evm/signer"
	commonerrors "github.com/ClipFinance/testnet-bridge/common/errors"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// auxDelimiter separates the private key from optional auxiliary data on a line.
const auxDelimiter = ":"

// Account is a private-key backed signing identity read from the account source.
//
// Fields:
// - Signer: signs transactions and exposes the address.
// - Aux: the auxiliary data following the key, if any.
// - Line: the 1-based line number the account was read from.
type Account struct {
	signer.Signer
	Aux  string
	Line int
}

// LogFields returns the source line and auxiliary data for log entries.
func (a *Account) LogFields() logrus.Fields {
	fields := logrus.Fields{"line": a.Line}
	if a.Aux != "" {
		fields["aux"] = a.Aux
	}
	return fields
}

// LoadFile reads and decodes the account source at path.
//
// Parameters:
// - path: the path of the newline-delimited account file.
//
// Returns:
// - []*Account: the decoded accounts in file order.
// - error: ErrConfigDecode if the file cannot be read or any line is invalid.
func LoadFile(path string) ([]*Account, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(commonerrors.ErrConfigDecode, "open %s: %v", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes one account per line. Each line holds a hex private key, with or
// without 0x, optionally followed by ":" and auxiliary data. A single bad line
// fails the whole source.
//
// Parameters:
// - r: the reader holding the account source.
//
// Returns:
// - []*Account: the decoded accounts in source order.
// - error: ErrConfigDecode wrapped with the offending line number.
func Parse(r io.Reader) ([]*Account, error) {
	var accounts []*Account

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			return nil, errors.Wrapf(commonerrors.ErrConfigDecode, "line %d: empty line", line)
		}

		key, aux, _ := strings.Cut(text, auxDelimiter)
		s, err := signer.FromHex(key)
		if err != nil {
			return nil, errors.Wrapf(commonerrors.ErrConfigDecode, "line %d: %v", line, err)
		}

		accounts = append(accounts, &Account{
			Signer: s,
			Aux:    strings.TrimSpace(aux),
			Line:   line,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(commonerrors.ErrConfigDecode, "read line %d: %v", line+1, err)
	}

	return accounts, nil
}

// Shuffle reorders the accounts in place.
func Shuffle(accounts []*Account, rng *rand.Rand) {
	rng.Shuffle(len(accounts), func(i, j int) {
		accounts[i], accounts[j] = accounts[j], accounts[i]
	})
}
