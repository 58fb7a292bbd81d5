package domain_test

import (
	"testing"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/domain/wire"
	"github.com/stretchr/testify/require"
)

func usdtLocation(t *testing.T) domain.Location {
	return mustLocation(
		t, 1, domain.Parachain(1000), domain.PalletInstance(50), domain.GeneralIndex(1984),
	)
}

func transferProgram(t *testing.T) domain.Program {
	t.Helper()
	fee := domain.NewFungibleAsset(domain.ParentLocation(), 10)
	withdraw, err := domain.NewAssets(domain.NewFungibleAsset(domain.ParentLocation(), 110))
	require.NoError(t, err)
	beneficiary := mustLocation(t, 0, domain.AccountId32(domain.Polkadot(), alice))

	return domain.Program{
		domain.WithdrawAsset(withdraw),
		domain.BuyExecution(fee, domain.Unlimited()),
		domain.DepositReserveAsset(domain.AllCounted(1), domain.SiblingChain(2000), domain.Program{
			domain.BuyExecution(fee, domain.Limited(domain.Weight{RefTime: 1_000_000, ProofSize: 4096})),
			domain.DepositAsset(domain.AllCounted(1), beneficiary),
		}),
		domain.SetTopic([32]byte{1, 2, 3}),
	}
}

func TestLocationCodec(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for _, loc := range []domain.Location{
			domain.Here(),
			domain.ParentLocation(),
			usdtLocation(t),
			mustLocation(t, 0, domain.AccountKey20(domain.Ethereum(1), [20]byte{0xaa})),
			mustLocation(t, 2, domain.GlobalConsensus(*domain.Kusama()), domain.Parachain(1000)),
			mustLocation(t, 0, domain.GeneralKey([]byte("usdt")), domain.OnlyChild()),
		} {
			buf, err := wire.Marshal(loc)
			require.NoError(t, err)

			var got domain.Location
			require.NoError(t, wire.Unmarshal(buf, &got))
			require.True(t, got.Equal(loc), "got %s, expected %s", got, loc)
		}
	})

	t.Run("known encoding", func(t *testing.T) {
		buf, err := wire.Marshal(domain.SiblingChain(1000))
		require.NoError(t, err)
		// parents 1, X1, Parachain tag 0, compact(1000)
		require.Equal(t, []byte{0x01, 0x01, 0x00, 0xa1, 0x0f}, buf)
	})

	t.Run("rejects deep interior", func(t *testing.T) {
		buf := []byte{0x00, 0x09}
		for i := 0; i < 9; i++ {
			buf = append(buf, 0x00, 0x04)
		}
		var got domain.Location
		err := wire.Unmarshal(buf, &got)
		require.ErrorIs(t, err, domain.ErrInteriorTooDeep)
	})

	t.Run("rejects trailing bytes", func(t *testing.T) {
		var got domain.Location
		err := wire.Unmarshal([]byte{0x01, 0x00, 0xff}, &got)
		require.ErrorIs(t, err, wire.ErrTrailingBytes)
	})

	t.Run("rejects truncated input", func(t *testing.T) {
		var got domain.Location
		require.Error(t, wire.Unmarshal([]byte{0x01, 0x01, 0x00}, &got))
	})
}

func TestAssetsCodec(t *testing.T) {
	t.Run("canonical order", func(t *testing.T) {
		native := domain.NewFungibleAsset(domain.Here(), 5)
		usdt := domain.NewFungibleAsset(usdtLocation(t), 7)
		a, err := domain.NewAssets(usdt, native)
		require.NoError(t, err)
		b, err := domain.NewAssets(native, usdt)
		require.NoError(t, err)

		bufA, err := wire.Marshal(a)
		require.NoError(t, err)
		bufB, err := wire.Marshal(b)
		require.NoError(t, err)
		require.Equal(t, bufA, bufB)

		var got domain.Assets
		require.NoError(t, wire.Unmarshal(bufA, &got))
		require.True(t, got.Equal(a))
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := domain.NewAssets(
			domain.NewFungibleAsset(domain.Here(), 1), domain.NewFungibleAsset(domain.Here(), 2),
		)
		require.ErrorIs(t, err, domain.ErrDuplicateAsset)
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		_, err := domain.NewAssets(domain.NewFungibleAsset(domain.Here(), 0))
		require.Error(t, err)
	})

	t.Run("non fungible", func(t *testing.T) {
		nft := domain.NewNonFungibleAsset(
			domain.AbstractId([]byte("kitties")),
			domain.AssetInstance{Kind: domain.InstanceArray4, Data: []byte{1, 2, 3, 4}},
		)
		list, err := domain.NewAssets(nft)
		require.NoError(t, err)

		buf, err := wire.Marshal(list)
		require.NoError(t, err)
		var got domain.Assets
		require.NoError(t, wire.Unmarshal(buf, &got))
		require.True(t, got.Equal(list))
	})
}

func TestProgramCodec(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		program := transferProgram(t)
		buf, err := wire.Marshal(program)
		require.NoError(t, err)

		var got domain.Program
		require.NoError(t, wire.Unmarshal(buf, &got))
		require.Len(t, got, len(program))
		require.Equal(t, domain.InstrDepositReserveAsset, got[2].Kind)
		require.Len(t, got[2].Program, 2)

		again, err := wire.Marshal(got)
		require.NoError(t, err)
		require.Equal(t, buf, again)
	})

	t.Run("rejects unknown instruction", func(t *testing.T) {
		var got domain.Program
		require.Error(t, wire.Unmarshal([]byte{0x04, 0xfe}, &got))
	})
}
