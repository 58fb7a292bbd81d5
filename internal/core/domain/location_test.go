package domain_test

import (
	"testing"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/stretchr/testify/require"
)

var alice = [32]byte{
	0xd4, 0x35, 0x93, 0xc7, 0x15, 0xfd, 0xd3, 0x1c, 0x61, 0x14, 0x1a, 0xbd,
	0x04, 0xa9, 0x9f, 0xd6, 0x82, 0x2c, 0x85, 0x58, 0x85, 0x4c, 0xcd, 0xe3,
	0x9a, 0x56, 0x84, 0xe7, 0xa5, 0x6d, 0xa2, 0x7d,
}

func mustLocation(t *testing.T, parents uint8, interior ...domain.Junction) domain.Location {
	t.Helper()
	loc, err := domain.NewLocation(parents, interior...)
	require.NoError(t, err)
	return loc
}

func TestLocation(t *testing.T) {
	t.Run("here", func(t *testing.T) {
		require.True(t, domain.Here().IsHere())
		require.False(t, domain.ParentLocation().IsHere())
		require.False(t, mustLocation(t, 0, domain.Parachain(1000)).IsHere())
	})

	t.Run("first and take first", func(t *testing.T) {
		loc := mustLocation(t, 1, domain.Parachain(1000), domain.GeneralIndex(5))

		first, ok := loc.First()
		require.True(t, ok)
		require.True(t, first.Equal(domain.Parachain(1000)))
		require.Len(t, loc.Interior, 2)

		taken, rest, ok := loc.TakeFirst()
		require.True(t, ok)
		require.True(t, taken.Equal(domain.Parachain(1000)))
		require.True(t, rest.Equal(mustLocation(t, 1, domain.GeneralIndex(5))))
		require.Len(t, loc.Interior, 2)

		_, _, ok = domain.Here().TakeFirst()
		require.False(t, ok)
	})

	t.Run("depth limit", func(t *testing.T) {
		junctions := make([]domain.Junction, domain.MaxInteriorDepth+1)
		for i := range junctions {
			junctions[i] = domain.GeneralIndex(uint64(i))
		}
		_, err := domain.NewLocation(0, junctions[:domain.MaxInteriorDepth]...)
		require.NoError(t, err)
		_, err = domain.NewLocation(0, junctions...)
		require.ErrorIs(t, err, domain.ErrInteriorTooDeep)
	})

	t.Run("strip prefix", func(t *testing.T) {
		dest := domain.SiblingChain(2000)
		beneficiary := mustLocation(
			t, 1, domain.Parachain(2000), domain.AccountId32(nil, alice),
		)
		rest, ok := beneficiary.StripPrefix(dest)
		require.True(t, ok)
		require.True(t, rest.Equal(mustLocation(t, 0, domain.AccountId32(nil, alice))))

		_, ok = beneficiary.StripPrefix(domain.SiblingChain(2001))
		require.False(t, ok)
		_, ok = beneficiary.StripPrefix(mustLocation(t, 0, domain.Parachain(2000)))
		require.False(t, ok)
	})

	t.Run("equality", func(t *testing.T) {
		a := mustLocation(t, 0, domain.AccountId32(domain.Polkadot(), alice))
		b := mustLocation(t, 0, domain.AccountId32(domain.Polkadot(), alice))
		c := mustLocation(t, 0, domain.AccountId32(nil, alice))
		require.True(t, a.Equal(b))
		require.False(t, a.Equal(c))
	})
}

func TestParseLocation(t *testing.T) {
	fixtures := []struct {
		text     string
		expected domain.Location
	}{
		{".", domain.Here()},
		{"..", domain.ParentLocation()},
		{"../Parachain(1000)", domain.SiblingChain(1000)},
		{
			"../Parachain(1000)/PalletInstance(50)/GeneralIndex(1984)",
			domain.Location{Parents: 1, Interior: []domain.Junction{
				domain.Parachain(1000), domain.PalletInstance(50), domain.GeneralIndex(1984),
			}},
		},
		{
			"AccountId32(0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d)",
			domain.Location{Interior: []domain.Junction{domain.AccountId32(nil, alice)}},
		},
	}

	for _, f := range fixtures {
		t.Run(f.text, func(t *testing.T) {
			loc, err := domain.ParseLocation(f.text)
			require.NoError(t, err)
			require.True(t, loc.Equal(f.expected), "got %s", loc)

			again, err := domain.ParseLocation(loc.String())
			require.NoError(t, err)
			require.True(t, again.Equal(loc))
		})
	}

	t.Run("invalid", func(t *testing.T) {
		for _, text := range []string{
			"Parachain(1000)/..",
			"Parachain(x)",
			"PalletInstance(256)",
			"Unknown(1)",
			"AccountId32(0x1234)",
		} {
			_, err := domain.ParseLocation(text)
			require.Error(t, err, text)
		}
	})
}

func TestReanchor(t *testing.T) {
	const self = 1000
	usdt := mustLocation(t, 0, domain.PalletInstance(50), domain.GeneralIndex(1984))
	dot := domain.ParentLocation()
	sibling := domain.SiblingChain(2000)

	fixtures := []struct {
		name     string
		loc      domain.Location
		dest     domain.Location
		expected domain.Location
	}{
		{
			name:     "local asset to sibling",
			loc:      usdt,
			dest:     sibling,
			expected: mustLocation(t, 1, domain.Parachain(self), domain.PalletInstance(50), domain.GeneralIndex(1984)),
		},
		{
			name:     "parent asset to sibling",
			loc:      dot,
			dest:     sibling,
			expected: dot,
		},
		{
			name:     "parent asset to parent",
			loc:      dot,
			dest:     dot,
			expected: domain.Here(),
		},
		{
			name:     "local asset to parent",
			loc:      usdt,
			dest:     dot,
			expected: mustLocation(t, 0, domain.Parachain(self), domain.PalletInstance(50), domain.GeneralIndex(1984)),
		},
		{
			name:     "sibling asset to its reserve",
			loc:      mustLocation(t, 1, domain.Parachain(2000), domain.GeneralIndex(1)),
			dest:     sibling,
			expected: mustLocation(t, 0, domain.GeneralIndex(1)),
		},
		{
			name:     "parent asset to child",
			loc:      dot,
			dest:     mustLocation(t, 0, domain.Parachain(7)),
			expected: domain.Location{Parents: 2},
		},
	}

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			got, err := domain.Reanchor(f.loc, f.dest, self)
			require.NoError(t, err)
			require.True(t, got.Equal(f.expected), "got %s", got)
		})
	}

	t.Run("local asset without chain id", func(t *testing.T) {
		_, err := domain.Reanchor(usdt, sibling, 0)
		require.Error(t, err)
	})
}
