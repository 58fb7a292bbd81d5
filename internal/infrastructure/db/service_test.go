package db_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
	"github.com/arkade-os/xreserve/internal/infrastructure/db"
	"github.com/stretchr/testify/require"
)

var (
	usdt = domain.Location{Parents: 1, Interior: []domain.Junction{
		domain.Parachain(1000), domain.PalletInstance(50), domain.GeneralIndex(1984),
	}}
	usdc = domain.Location{Parents: 1, Interior: []domain.Junction{
		domain.Parachain(1000), domain.PalletInstance(50), domain.GeneralIndex(1337),
	}}
)

func TestService(t *testing.T) {
	tests := []struct {
		name   string
		config db.ServiceConfig
	}{
		{
			name: "repo_manager_with_badger_stores",
			config: db.ServiceConfig{
				DataStoreType:   "badger",
				DataStoreConfig: []interface{}{"", nil},
			},
		},
		{
			name: "repo_manager_with_sqlite_stores",
			config: db.ServiceConfig{
				DataStoreType:   "sqlite",
				DataStoreConfig: []interface{}{t.TempDir()},
			},
		},
	}
	if dsn := os.Getenv("XRESERVE_TEST_PG_URL"); dsn != "" {
		tests = append(tests, struct {
			name   string
			config db.ServiceConfig
		}{
			name: "repo_manager_with_postgres_stores",
			config: db.ServiceConfig{
				DataStoreType:   "postgres",
				DataStoreConfig: []interface{}{dsn, true},
			},
		})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := db.NewService(tt.config)
			require.NoError(t, err)
			require.NotNil(t, svc)

			testRegistryRepository(t, svc)
			testTrapRepository(t, svc)
			testConcurrentTraps(t, svc)

			svc.Close()
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := db.NewService(db.ServiceConfig{DataStoreType: "leveldb"})
		require.Error(t, err)

		_, err = db.NewService(db.ServiceConfig{
			DataStoreType: "postgres", DataStoreConfig: []interface{}{"dsn"},
		})
		require.Error(t, err)

		_, err = db.NewService(db.ServiceConfig{
			DataStoreType: "sqlite", DataStoreConfig: []interface{}{42},
		})
		require.Error(t, err)
	})
}

func testRegistryRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_registry_repository", func(t *testing.T) {
		ctx := context.Background()
		repo := svc.Registry()

		entry, err := repo.GetByLocalId(ctx, 10)
		require.NoError(t, err)
		require.Nil(t, entry)

		err = repo.Register(ctx, domain.RegistryEntry{LocalId: 10, Location: usdt})
		require.NoError(t, err)

		entry, err = repo.GetByLocalId(ctx, 10)
		require.NoError(t, err)
		require.NotNil(t, entry)
		require.True(t, entry.Location.Equal(usdt))

		entry, err = repo.GetByLocation(ctx, usdt)
		require.NoError(t, err)
		require.NotNil(t, entry)
		require.EqualValues(t, 10, entry.LocalId)

		err = repo.Register(ctx, domain.RegistryEntry{LocalId: 10, Location: usdc})
		require.ErrorIs(t, err, domain.ErrLocalIdTaken)

		err = repo.Register(ctx, domain.RegistryEntry{LocalId: 11, Location: usdt})
		require.ErrorIs(t, err, domain.ErrLocationTaken)

		err = repo.Register(ctx, domain.RegistryEntry{LocalId: 2, Location: usdc})
		require.NoError(t, err)

		entries, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.EqualValues(t, 2, entries[0].LocalId)
		require.EqualValues(t, 10, entries[1].LocalId)

		removed, err := repo.Unregister(ctx, 10)
		require.NoError(t, err)
		require.NotNil(t, removed)
		require.True(t, removed.Location.Equal(usdt))

		_, err = repo.Unregister(ctx, 10)
		require.ErrorIs(t, err, domain.ErrEntryNotFound)

		entry, err = repo.GetByLocation(ctx, usdt)
		require.NoError(t, err)
		require.Nil(t, entry)

		// the location is free again
		err = repo.Register(ctx, domain.RegistryEntry{LocalId: 12, Location: usdt})
		require.NoError(t, err)
	})
}

func testTrapRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("test_trap_repository", func(t *testing.T) {
		ctx := context.Background()
		repo := svc.Traps()

		assets, err := domain.NewAssets(
			domain.NewFungibleAsset(usdt, 97), domain.NewFungibleAsset(domain.Here(), 5),
		)
		require.NoError(t, err)
		origin := domain.SiblingChain(1000)
		now := time.Now().Unix()

		record, err := domain.NewTrapRecord(origin, assets, now)
		require.NoError(t, err)

		got, err := repo.Get(ctx, record.Hash)
		require.NoError(t, err)
		require.Nil(t, got)

		_, err = repo.Claim(ctx, record.Hash)
		require.ErrorIs(t, err, domain.ErrNotTrapped)

		stored, err := repo.Trap(ctx, record)
		require.NoError(t, err)
		require.EqualValues(t, 1, stored.Count)

		stored, err = repo.Trap(ctx, record)
		require.NoError(t, err)
		require.EqualValues(t, 2, stored.Count)
		require.True(t, stored.Origin.Equal(origin))
		require.True(t, stored.Assets.Equal(assets))

		records, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, record.Hash, records[0].Hash)

		claimed, err := repo.Claim(ctx, record.Hash)
		require.NoError(t, err)
		require.EqualValues(t, 1, claimed.Count)
		require.True(t, claimed.Assets.Equal(assets))

		claimed, err = repo.Claim(ctx, record.Hash)
		require.NoError(t, err)
		require.Zero(t, claimed.Count)

		_, err = repo.Claim(ctx, record.Hash)
		require.ErrorIs(t, err, domain.ErrNotTrapped)

		got, err = repo.Get(ctx, record.Hash)
		require.NoError(t, err)
		require.Nil(t, got)
	})
}

func testConcurrentTraps(t *testing.T, svc ports.RepoManager) {
	t.Run("test_concurrent_traps", func(t *testing.T) {
		ctx := context.Background()
		repo := svc.Traps()

		assets, err := domain.NewAssets(domain.NewFungibleAsset(usdc, 1))
		require.NoError(t, err)
		record, err := domain.NewTrapRecord(domain.ParentLocation(), assets, time.Now().Unix())
		require.NoError(t, err)

		count := 10
		wg := sync.WaitGroup{}
		wg.Add(count)
		for range count {
			go func() {
				defer wg.Done()
				_, err := repo.Trap(ctx, record)
				require.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := repo.Get(ctx, record.Hash)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.EqualValues(t, count, got.Count)
	})
}
