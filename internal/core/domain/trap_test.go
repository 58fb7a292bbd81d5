package domain_test

import (
	"testing"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestTrapHash(t *testing.T) {
	origin := domain.SiblingChain(1000)
	assets, err := domain.NewAssets(domain.NewFungibleAsset(domain.ParentLocation(), 500))
	require.NoError(t, err)

	hash, err := domain.TrapHash(origin, assets)
	require.NoError(t, err)
	require.Len(t, hash, 64)

	again, err := domain.TrapHash(origin, assets)
	require.NoError(t, err)
	require.Equal(t, hash, again)

	t.Run("depends on origin", func(t *testing.T) {
		other, err := domain.TrapHash(domain.SiblingChain(1001), assets)
		require.NoError(t, err)
		require.NotEqual(t, hash, other)
	})

	t.Run("depends on assets", func(t *testing.T) {
		more, err := domain.NewAssets(domain.NewFungibleAsset(domain.ParentLocation(), 501))
		require.NoError(t, err)
		other, err := domain.TrapHash(origin, more)
		require.NoError(t, err)
		require.NotEqual(t, hash, other)
	})

	t.Run("payload round trip", func(t *testing.T) {
		record, err := domain.NewTrapRecord(origin, assets, 1)
		require.NoError(t, err)
		require.Equal(t, hash, record.Hash)

		rawOrigin, rawAssets, err := domain.EncodeTrapPayload(record)
		require.NoError(t, err)
		gotOrigin, gotAssets, err := domain.DecodeTrapPayload(rawOrigin, rawAssets)
		require.NoError(t, err)
		require.True(t, gotOrigin.Equal(origin))
		require.True(t, gotAssets.Equal(assets))
	})
}

func TestAccountOf(t *testing.T) {
	fixtures := []struct {
		loc      domain.Location
		expected string
	}{
		{domain.ParentLocation(), "parent"},
		{domain.SiblingChain(2000), "sibling:2000"},
		{mustLocation(t, 0, domain.Parachain(7)), "child:7"},
		{
			mustLocation(t, 0, domain.AccountId32(nil, alice)),
			"d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d",
		},
	}
	for _, f := range fixtures {
		got, ok := domain.AccountOf(f.loc)
		require.True(t, ok, f.loc.String())
		require.Equal(t, f.expected, got)

		parsed, err := domain.ParseAccount(got)
		require.NoError(t, err)
		require.Equal(t, got, parsed)
	}

	for _, loc := range []domain.Location{
		domain.Here(),
		usdtLocation(t),
		mustLocation(t, 1, domain.AccountId32(nil, alice)),
	} {
		_, ok := domain.AccountOf(loc)
		require.False(t, ok, loc.String())
	}
}
