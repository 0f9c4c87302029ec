package accounts

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	commonerrors "github.com/ClipFinance/testnet-bridge/common/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	keyA = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	keyB = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
)

func addressOf(t *testing.T, key string) common.Address {
	t.Helper()
	priv, err := crypto.HexToECDSA(strings.TrimPrefix(key, "0x"))
	require.NoError(t, err)
	return crypto.PubkeyToAddress(priv.PublicKey)
}

func TestParse(t *testing.T) {
	t.Run("keys_with_and_without_prefix", func(t *testing.T) {
		accounts, err := Parse(strings.NewReader(keyA + "\n" + keyB + ":wallet-2\n"))
		require.NoError(t, err)
		require.Len(t, accounts, 2)

		require.Equal(t, addressOf(t, keyA), accounts[0].Address())
		require.Equal(t, "", accounts[0].Aux)
		require.Equal(t, 1, accounts[0].Line)

		require.Equal(t, addressOf(t, keyB), accounts[1].Address())
		require.Equal(t, "wallet-2", accounts[1].Aux)
		require.Equal(t, 2, accounts[1].Line)
	})

	t.Run("no_trailing_newline", func(t *testing.T) {
		accounts, err := Parse(strings.NewReader(keyA))
		require.NoError(t, err)
		require.Len(t, accounts, 1)
	})

	t.Run("crlf_line_endings", func(t *testing.T) {
		accounts, err := Parse(strings.NewReader(keyA + "\r\n" + keyB + "\r\n"))
		require.NoError(t, err)
		require.Len(t, accounts, 2)
	})

	t.Run("empty_source", func(t *testing.T) {
		accounts, err := Parse(strings.NewReader(""))
		require.NoError(t, err)
		require.Empty(t, accounts)
	})

	t.Run("malformed_line_fails_whole_source", func(t *testing.T) {
		accounts, err := Parse(strings.NewReader(keyA + "\nnot-a-key\n" + keyB + "\n"))
		require.ErrorIs(t, err, commonerrors.ErrConfigDecode)
		require.ErrorContains(t, err, "line 2")
		require.Nil(t, accounts)
	})

	t.Run("blank_interior_line", func(t *testing.T) {
		_, err := Parse(strings.NewReader(keyA + "\n\n" + keyB + "\n"))
		require.ErrorIs(t, err, commonerrors.ErrConfigDecode)
		require.ErrorContains(t, err, "line 2")
	})

	t.Run("key_missing_before_aux", func(t *testing.T) {
		_, err := Parse(strings.NewReader(":aux\n"))
		require.ErrorIs(t, err, commonerrors.ErrConfigDecode)
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("reads_file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "privates.txt")
		require.NoError(t, os.WriteFile(path, []byte(keyA+"\n"), 0o600))

		accounts, err := LoadFile(path)
		require.NoError(t, err)
		require.Len(t, accounts, 1)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
		require.ErrorIs(t, err, commonerrors.ErrConfigDecode)
	})
}

func TestShuffle(t *testing.T) {
	accounts, err := Parse(strings.NewReader(keyA + "\n" + keyB + "\n" + keyA + ":3\n" + keyB + ":4\n"))
	require.NoError(t, err)

	Shuffle(accounts, rand.New(rand.NewSource(7)))

	lines := make([]int, 0, len(accounts))
	for _, a := range accounts {
		lines = append(lines, a.Line)
	}
	require.ElementsMatch(t, []int{1, 2, 3, 4}, lines)
}

func TestAccount_LogFields(t *testing.T) {
	accounts, err := Parse(strings.NewReader(keyA + "\n" + keyB + ":wallet-2\n"))
	require.NoError(t, err)

	require.Equal(t, logrus.Fields{"line": 1}, accounts[0].LogFields())
	require.Equal(t, logrus.Fields{"line": 2, "aux": "wallet-2"}, accounts[1].LogFields())
}
