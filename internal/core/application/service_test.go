package application

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	root  = "root"
	alice = "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
)

var testConfig = Config{
	NativeLocation: domain.Here(),
	ChainId:        1000,
	Trap: TrapConfig{
		MinBalance:   10,
		NativeRate:   5,
		FungibleRate: 3,
		DefaultRate:  7,
		LookupWeight: 2,
	},
}

type testEnv struct {
	svc       *service
	repos     *fakeRepoManager
	cache     *fakeLiveStore
	transport *mockTransport
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	repos := newFakeRepoManager()
	cache := newFakeLiveStore()
	transport := &mockTransport{}

	svc, err := NewService(
		repos, cache, transport, nil, staticAuthority{root: true}, nil, nil, nil, testConfig,
	)
	require.NoError(t, err)
	return testEnv{svc: svc.(*service), repos: repos, cache: cache, transport: transport}
}

func mustLocation(t *testing.T, parents uint8, interior ...domain.Junction) domain.Location {
	t.Helper()
	loc, err := domain.NewLocation(parents, interior...)
	require.NoError(t, err)
	return loc
}

func mustAssets(t *testing.T, list ...domain.Asset) domain.Assets {
	t.Helper()
	assets, err := domain.NewAssets(list...)
	require.NoError(t, err)
	return assets
}

func accountLocation(t *testing.T, account string) domain.Location {
	t.Helper()
	buf, err := hex.DecodeString(account)
	require.NoError(t, err)
	var id [32]byte
	copy(id[:], buf)
	return mustLocation(t, 0, domain.AccountId32(nil, id))
}

func balanceOf(t *testing.T, env testEnv, account, currency string) uint64 {
	t.Helper()
	amount, err := env.cache.balances.Balance(context.Background(), account, currency)
	require.NoError(t, err)
	return amount
}

func TestNewService(t *testing.T) {
	repos := newFakeRepoManager()
	cache := newFakeLiveStore()
	authority := staticAuthority{}

	_, err := NewService(nil, cache, &mockTransport{}, nil, authority, nil, nil, nil, testConfig)
	require.Error(t, err)
	_, err = NewService(repos, nil, &mockTransport{}, nil, authority, nil, nil, nil, testConfig)
	require.Error(t, err)
	_, err = NewService(repos, cache, nil, nil, authority, nil, nil, nil, testConfig)
	require.Error(t, err)
	_, err = NewService(repos, cache, &mockTransport{}, nil, nil, nil, nil, nil, testConfig)
	require.Error(t, err)
}

func TestDeposit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Deposit(ctx, alice, domain.NativeCurrency, 1000))
	require.NoError(t, env.svc.Deposit(ctx, alice, domain.NativeCurrency, 1))

	balances, err := env.svc.GetBalances(ctx, alice)
	require.Nil(t, err)
	require.Equal(t, map[string]uint64{domain.NativeCurrency: 1001}, balances)

	depositErr := env.svc.Deposit(ctx, alice, domain.NativeCurrency, 0)
	require.NotNil(t, depositErr)
	require.True(t, errors.INVALID_ASSETS.Is(depositErr))
}

func TestSetDestinationVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	dest := domain.SiblingChain(2000)

	require.Nil(t, env.svc.SetDestinationVersion(ctx, dest, domain.V2))
	v, ok, err := env.cache.versions.SupportedVersion(ctx, dest)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.V2, v)

	setErr := env.svc.SetDestinationVersion(ctx, dest, domain.Version(9))
	require.NotNil(t, setErr)
	require.True(t, errors.UNSUPPORTED_VERSION.Is(setErr))
}

func ptr[T any](v T) *T {
	return &v
}
