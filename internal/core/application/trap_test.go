package application

import (
	"context"
	"testing"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestDropAssets(t *testing.T) {
	ctx := context.Background()
	origin := domain.SiblingChain(2000)
	usdt := mustLocation(
		t, 1, domain.Parachain(1000), domain.PalletInstance(50), domain.GeneralIndex(1984),
	)
	cfg := testConfig.Trap

	t.Run("native below minimum balance", func(t *testing.T) {
		env := newTestEnv(t)
		assets := mustAssets(t, domain.NewFungibleAsset(domain.Here(), cfg.MinBalance-1))

		outcome, err := env.svc.DropAssets(ctx, origin, assets)
		require.Nil(t, err)
		require.Empty(t, outcome.Trapped)
		require.Nil(t, outcome.Record)
		require.True(t, outcome.Charged.Equal(assets))

		records, err := env.svc.TrappedAssets(ctx)
		require.Nil(t, err)
		require.Empty(t, records)
	})

	t.Run("native at ten times minimum balance", func(t *testing.T) {
		env := newTestEnv(t)
		amount := 10 * cfg.MinBalance
		assets := mustAssets(t, domain.NewFungibleAsset(domain.Here(), amount))

		outcome, err := env.svc.DropAssets(ctx, origin, assets)
		require.Nil(t, err)
		require.Len(t, outcome.Trapped, 1)
		require.Equal(t, amount-cfg.NativeRate, outcome.Trapped[0].Fun.Amount)
		require.NotNil(t, outcome.Record)
		require.EqualValues(t, 1, outcome.Record.Count)
		require.Zero(t, outcome.Weight)
	})

	t.Run("registered fungible", func(t *testing.T) {
		env := newTestEnv(t)
		require.Nil(t, env.svc.RegisterAsset(ctx, root, 10, usdt))
		assets := mustAssets(t, domain.NewFungibleAsset(usdt, 100))

		outcome, err := env.svc.DropAssets(ctx, origin, assets)
		require.Nil(t, err)
		require.Len(t, outcome.Trapped, 1)
		require.Equal(t, 100-cfg.FungibleRate, outcome.Trapped[0].Fun.Amount)
		require.Equal(t, cfg.LookupWeight, outcome.Weight)
	})

	t.Run("registered fungible below minimum balance", func(t *testing.T) {
		env := newTestEnv(t)
		require.Nil(t, env.svc.RegisterAsset(ctx, root, 10, usdt))
		assets := mustAssets(t, domain.NewFungibleAsset(usdt, cfg.MinBalance/2))

		outcome, err := env.svc.DropAssets(ctx, origin, assets)
		require.Nil(t, err)
		require.Empty(t, outcome.Trapped)
		require.Nil(t, outcome.Record)
		require.True(t, outcome.Charged.Equal(assets))
		require.Equal(t, cfg.LookupWeight, outcome.Weight)

		records, err := env.svc.TrappedAssets(ctx)
		require.Nil(t, err)
		require.Empty(t, records)
	})

	t.Run("registered fungible below fee", func(t *testing.T) {
		env := newTestEnv(t)
		require.Nil(t, env.svc.RegisterAsset(ctx, root, 10, usdt))
		assets := mustAssets(t, domain.NewFungibleAsset(usdt, cfg.FungibleRate-1))

		outcome, err := env.svc.DropAssets(ctx, origin, assets)
		require.Nil(t, err)
		require.Empty(t, outcome.Trapped)
		require.Nil(t, outcome.Record)
		require.Equal(t, cfg.LookupWeight, outcome.Weight)
	})

	t.Run("other assets are trapped in full", func(t *testing.T) {
		env := newTestEnv(t)
		nft := domain.NewNonFungibleAsset(
			domain.AbstractId([]byte("kitty")), domain.AssetInstance{Kind: domain.InstanceIndex, Index: 7},
		)
		unregistered := domain.NewFungibleAsset(usdt, 100)
		assets := mustAssets(t, nft, unregistered)

		outcome, err := env.svc.DropAssets(ctx, origin, assets)
		require.Nil(t, err)
		require.True(t, outcome.Trapped.Equal(assets))
		require.Empty(t, outcome.Charged)
		require.Equal(t, 2*cfg.DefaultRate+cfg.LookupWeight, outcome.Weight)
	})

	t.Run("records accumulate", func(t *testing.T) {
		env := newTestEnv(t)
		assets := mustAssets(t, domain.NewFungibleAsset(domain.Here(), 100))

		first, err := env.svc.DropAssets(ctx, origin, assets)
		require.Nil(t, err)
		second, err := env.svc.DropAssets(ctx, origin, assets)
		require.Nil(t, err)
		require.Equal(t, first.Record.Hash, second.Record.Hash)
		require.EqualValues(t, 2, second.Record.Count)
	})
}

func TestClaimAssets(t *testing.T) {
	ctx := context.Background()
	origin := domain.SiblingChain(2000)
	env := newTestEnv(t)

	dropped := mustAssets(t, domain.NewFungibleAsset(domain.Here(), 100))
	_, err := env.svc.DropAssets(ctx, origin, dropped)
	require.Nil(t, err)
	_, err = env.svc.DropAssets(ctx, origin, dropped)
	require.Nil(t, err)

	trapped := mustAssets(t, domain.NewFungibleAsset(domain.Here(), 100-testConfig.Trap.NativeRate))

	t.Run("wrong origin", func(t *testing.T) {
		_, err := env.svc.ClaimAssets(ctx, domain.SiblingChain(2001), trapped)
		require.NotNil(t, err)
		require.True(t, errors.NOT_TRAPPED.Is(err))
	})

	t.Run("wrong assets", func(t *testing.T) {
		_, err := env.svc.ClaimAssets(ctx, origin, dropped)
		require.NotNil(t, err)
		require.True(t, errors.NOT_TRAPPED.Is(err))
	})

	t.Run("once per count", func(t *testing.T) {
		for range 2 {
			claimed, err := env.svc.ClaimAssets(ctx, origin, trapped)
			require.Nil(t, err)
			require.True(t, claimed.Equal(trapped))
		}

		_, err := env.svc.ClaimAssets(ctx, origin, trapped)
		require.NotNil(t, err)
		require.True(t, errors.NOT_TRAPPED.Is(err))

		records, listErr := env.svc.TrappedAssets(ctx)
		require.Nil(t, listErr)
		require.Empty(t, records)
	})
}
