package chainfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/infrastructure/chainfile"
	"github.com/stretchr/testify/require"
)

const (
	admin = "8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48"

	validChainFile = `
admins = ["0x8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48"]

[[destinations]]
location = "../Parachain(2000)"
version = 2

[[destinations]]
location = ".."
version = 3
`
)

func TestChainFile(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		path := writeFile(t, validChainFile)
		c, err := chainfile.Load(path)
		require.NoError(t, err)

		require.True(t, c.IsPrivileged(ctx, chainfile.RootCaller))
		require.True(t, c.IsPrivileged(ctx, admin))
		require.True(t, c.IsPrivileged(ctx, "0x"+admin))
		require.False(t, c.IsPrivileged(ctx, "sibling:2000"))
		require.False(t, c.IsPrivileged(ctx, "not an account"))

		versions, err := c.Versions(ctx)
		require.NoError(t, err)
		require.Len(t, versions, 2)
		require.Equal(t, domain.SiblingChain(2000).String(), versions[0].Destination.String())
		require.Equal(t, domain.V2, versions[0].Version)
		require.Equal(t, domain.ParentLocation().String(), versions[1].Destination.String())
		require.Equal(t, domain.V3, versions[1].Version)
	})

	t.Run("reload", func(t *testing.T) {
		path := writeFile(t, validChainFile)
		c, err := chainfile.Load(path)
		require.NoError(t, err)

		err = os.WriteFile(path, []byte(`
[[destinations]]
location = "../Parachain(3000)"
version = 3
`), 0600)
		require.NoError(t, err)

		versions, err := c.Versions(ctx)
		require.NoError(t, err)
		require.Len(t, versions, 1)
		require.Equal(t, domain.SiblingChain(3000).String(), versions[0].Destination.String())
		require.False(t, c.IsPrivileged(ctx, admin))

		// a broken edit keeps the last good content
		err = os.WriteFile(path, []byte("admins = ["), 0600)
		require.NoError(t, err)
		versions, err = c.Versions(ctx)
		require.NoError(t, err)
		require.Len(t, versions, 1)
	})

	t.Run("empty path", func(t *testing.T) {
		c, err := chainfile.Load("")
		require.NoError(t, err)
		require.True(t, c.IsPrivileged(ctx, chainfile.RootCaller))
		require.False(t, c.IsPrivileged(ctx, admin))

		versions, err := c.Versions(ctx)
		require.NoError(t, err)
		require.Empty(t, versions)
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			name    string
			content string
		}{
			{"malformed toml", "admins = ["},
			{"bad admin", `admins = ["xyz"]`},
			{"bad location", "[[destinations]]\nlocation = \"../Nowhere(1)\"\nversion = 3\n"},
			{"unsupported version", "[[destinations]]\nlocation = \"..\"\nversion = 1\n"},
		}
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				_, err := chainfile.Load(writeFile(t, f.content))
				require.Error(t, err)
			})
		}

		_, err := chainfile.Load(filepath.Join(t.TempDir(), "missing.toml"))
		require.Error(t, err)
	})
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.toml")
	err := os.WriteFile(path, []byte(content), 0600)
	require.NoError(t, err)
	return path
}
