package signer

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

func TestFromHex(t *testing.T) {
	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)

	t.Run("plain", func(t *testing.T) {
		s, err := FromHex(testKey)
		require.NoError(t, err)
		require.Equal(t, want, s.Address())
	})

	t.Run("prefixed_and_padded", func(t *testing.T) {
		s, err := FromHex("  0x" + testKey + " ")
		require.NoError(t, err)
		require.Equal(t, want, s.Address())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := FromHex("   ")
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := FromHex("not-a-key")
		require.Error(t, err)
	})
}

func TestSignTx_RoundTrip(t *testing.T) {
	s, err := FromHex(testKey)
	require.NoError(t, err)

	chainID := big.NewInt(42161)
	to := common.HexToAddress("0x0A9f824C05A74F577A536A8A0c673183a872Dff4")
	unsigned := ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     3,
		GasTipCap: big.NewInt(10_000_000),
		GasFeeCap: big.NewInt(10_000_000),
		Gas:       154321,
		To:        &to,
		Value:     big.NewInt(120_000_000_000_000),
		Data:      []byte{0x01, 0x02, 0x03},
	})

	signed, err := s.SignTx(unsigned, chainID)
	require.NoError(t, err)

	require.Equal(t, unsigned.Type(), signed.Type())
	require.Equal(t, unsigned.Nonce(), signed.Nonce())
	require.Equal(t, unsigned.Gas(), signed.Gas())
	require.Equal(t, unsigned.Data(), signed.Data())
	require.Equal(t, *unsigned.To(), *signed.To())
	require.Zero(t, unsigned.Value().Cmp(signed.Value()))
	require.Zero(t, unsigned.ChainId().Cmp(signed.ChainId()))
	require.Zero(t, unsigned.GasTipCap().Cmp(signed.GasTipCap()))
	require.Zero(t, unsigned.GasFeeCap().Cmp(signed.GasFeeCap()))

	v, r, sig := signed.RawSignatureValues()
	require.NotNil(t, v)
	require.NotZero(t, r.Sign())
	require.NotZero(t, sig.Sign())

	sender, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	require.Equal(t, s.Address(), sender)
}
