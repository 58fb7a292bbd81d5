package livestore_test

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"testing"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/internal/core/ports"
	inmemory "github.com/arkade-os/xreserve/internal/infrastructure/live-store/inmemory"
	redislivestore "github.com/arkade-os/xreserve/internal/infrastructure/live-store/redis"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLiveStoreImplementations(t *testing.T) {
	stores := []struct {
		name  string
		store ports.LiveStore
	}{
		{"inmemory", inmemory.NewLiveStore()},
	}

	if url := os.Getenv("XRESERVE_TEST_REDIS_URL"); url != "" {
		redisOpts, err := redis.ParseURL(url)
		require.NoError(t, err)
		rdb := redis.NewClient(redisOpts)
		t.Cleanup(func() {
			//nolint:errcheck
			rdb.Close()
		})
		stores = append(stores, struct {
			name  string
			store ports.LiveStore
		}{"redis", redislivestore.NewLiveStore(rdb, 5)})
	}

	for _, tt := range stores {
		t.Run(tt.name, func(t *testing.T) {
			runLiveStoreTests(t, tt.store)
		})
	}
}

func runLiveStoreTests(t *testing.T, store ports.LiveStore) {
	t.Run("balances", func(t *testing.T) {
		ctx := context.Background()
		balances := store.Balances()
		// keys are shared across runs against the same redis instance
		alice := "alice-" + uuid.New().String()
		bob := "bob-" + uuid.New().String()

		amount, err := balances.Balance(ctx, alice, domain.NativeCurrency)
		require.NoError(t, err)
		require.Zero(t, amount)

		err = balances.Credit(ctx, alice, domain.NativeCurrency, 1000)
		require.NoError(t, err)
		err = balances.Credit(ctx, alice, domain.RegisteredCurrency(1984), 50)
		require.NoError(t, err)

		all, err := balances.Balances(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, map[string]uint64{
			domain.NativeCurrency:           1000,
			domain.RegisteredCurrency(1984): 50,
		}, all)

		err = balances.Debit(ctx, alice, domain.NativeCurrency, 1001)
		require.ErrorIs(t, err, domain.ErrInsufficientBalance)
		amount, err = balances.Balance(ctx, alice, domain.NativeCurrency)
		require.NoError(t, err)
		require.Equal(t, 1000, int(amount))

		err = balances.Debit(ctx, alice, domain.NativeCurrency, 400)
		require.NoError(t, err)
		amount, err = balances.Balance(ctx, alice, domain.NativeCurrency)
		require.NoError(t, err)
		require.Equal(t, 600, int(amount))

		err = balances.Debit(ctx, alice, domain.RegisteredCurrency(1984), 50)
		require.NoError(t, err)
		all, err = balances.Balances(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, map[string]uint64{domain.NativeCurrency: 600}, all)

		err = balances.Debit(ctx, bob, domain.NativeCurrency, 0)
		require.NoError(t, err)
		err = balances.Debit(ctx, bob, domain.NativeCurrency, 1)
		require.ErrorIs(t, err, domain.ErrInsufficientBalance)

		err = balances.Credit(ctx, bob, domain.NativeCurrency, math.MaxUint64)
		require.NoError(t, err)
		err = balances.Credit(ctx, bob, domain.NativeCurrency, 1)
		require.ErrorIs(t, err, domain.ErrBalanceOverflow)
		amount, err = balances.Balance(ctx, bob, domain.NativeCurrency)
		require.NoError(t, err)
		require.Equal(t, uint64(math.MaxUint64), amount)
	})

	t.Run("concurrent credits and debits", func(t *testing.T) {
		ctx := context.Background()
		balances := store.Balances()
		account := "carol-" + uuid.New().String()

		err := balances.Credit(ctx, account, domain.NativeCurrency, 100)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := range 20 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if i%2 == 0 {
					errs <- balances.Credit(ctx, account, domain.NativeCurrency, 10)
					return
				}
				errs <- balances.Debit(ctx, account, domain.NativeCurrency, 10)
			}(i)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
		amount, err := balances.Balance(ctx, account, domain.NativeCurrency)
		require.NoError(t, err)
		require.Equal(t, 100, int(amount))
	})

	t.Run("versions", func(t *testing.T) {
		ctx := context.Background()
		versions := store.Versions()

		paraId := uint32(3000 + uuid.New().ID()%1000)
		dest := domain.SiblingChain(paraId)
		other := domain.SiblingChain(paraId + 1000)

		_, ok, err := versions.SupportedVersion(ctx, dest)
		require.NoError(t, err)
		require.False(t, ok)

		err = versions.SetSupportedVersion(ctx, dest, domain.V2)
		require.NoError(t, err)
		version, ok, err := versions.SupportedVersion(ctx, dest)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, domain.V2, version)

		err = versions.SetSupportedVersion(ctx, dest, domain.V3)
		require.NoError(t, err)
		version, ok, err = versions.SupportedVersion(ctx, dest)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, domain.V3, version, fmt.Sprintf("dest %s", dest))

		_, ok, err = versions.SupportedVersion(ctx, other)
		require.NoError(t, err)
		require.False(t, ok)

		err = versions.Forget(ctx, dest)
		require.NoError(t, err)
		_, ok, err = versions.SupportedVersion(ctx, dest)
		require.NoError(t, err)
		require.False(t, ok)

		err = versions.Forget(ctx, other)
		require.NoError(t, err)
	})
}
