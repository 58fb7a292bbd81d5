package application

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/arkade-os/xreserve/internal/core/domain"
	"github.com/arkade-os/xreserve/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	ctx := context.Background()
	reserve := domain.SiblingChain(1000)
	usdt := mustLocation(
		t, 1, domain.Parachain(1000), domain.PalletInstance(50), domain.GeneralIndex(1984),
	)
	usdtCurrency := domain.RegisteredCurrency(10)
	beneficiary := accountLocation(t, alice)

	withRegistry := func(t *testing.T) testEnv {
		env := newTestEnv(t)
		require.Nil(t, env.svc.RegisterAsset(ctx, root, 10, usdt))
		return env
	}
	deposited := func(amount uint64) domain.Instruction {
		return domain.ReserveAssetDeposited(mustAssets(t, domain.NewFungibleAsset(usdt, amount)))
	}

	t.Run("reserve deposit", func(t *testing.T) {
		env := withRegistry(t)
		program := domain.Program{
			deposited(100),
			domain.ClearOrigin(),
			domain.BuyExecution(domain.NewFungibleAsset(usdt, 10), domain.Unlimited()),
			domain.DepositAsset(domain.AllCounted(1), beneficiary),
			domain.SetTopic([32]byte{1}),
		}

		outcome := env.svc.Execute(ctx, reserve, domain.NewVersionedProgram(program))
		require.Nil(t, outcome.Error)
		require.Equal(t, len(program), outcome.Executed)
		require.Nil(t, outcome.Trapped)
		require.NotNil(t, outcome.Topic)
		require.Equal(t, [32]byte{1}, *outcome.Topic)
		require.EqualValues(t, 90, balanceOf(t, env, alice, usdtCurrency))
	})

	t.Run("legacy program", func(t *testing.T) {
		env := withRegistry(t)
		program := domain.Program{
			deposited(100),
			domain.ClearOrigin(),
			domain.DepositAsset(domain.All(), beneficiary),
		}
		legacy, err := domain.Downgrade(program, domain.V2)
		require.NoError(t, err)

		outcome := env.svc.Execute(ctx, reserve, legacy)
		require.Nil(t, outcome.Error)
		require.EqualValues(t, 100, balanceOf(t, env, alice, usdtCurrency))
	})

	t.Run("untrusted reserve", func(t *testing.T) {
		env := withRegistry(t)
		program := domain.Program{
			deposited(100),
			domain.DepositAsset(domain.AllCounted(1), beneficiary),
		}

		outcome := env.svc.Execute(ctx, domain.SiblingChain(2000), domain.NewVersionedProgram(program))
		require.NotNil(t, outcome.Error)
		require.True(t, errors.UNTRUSTED_RESERVE.Is(outcome.Error))
		require.Zero(t, outcome.Executed)
		require.Nil(t, outcome.Trapped)
		require.Zero(t, balanceOf(t, env, alice, usdtCurrency))
	})

	t.Run("teleports are refused", func(t *testing.T) {
		env := withRegistry(t)
		program := domain.Program{
			domain.ReceiveTeleportedAsset(mustAssets(t, domain.NewFungibleAsset(usdt, 100))),
		}

		outcome := env.svc.Execute(ctx, reserve, domain.NewVersionedProgram(program))
		require.NotNil(t, outcome.Error)
		require.True(t, errors.UNTRUSTED_RESERVE.Is(outcome.Error))
	})

	t.Run("cleared origin", func(t *testing.T) {
		env := withRegistry(t)
		program := domain.Program{
			domain.ClearOrigin(),
			deposited(100),
		}

		outcome := env.svc.Execute(ctx, reserve, domain.NewVersionedProgram(program))
		require.NotNil(t, outcome.Error)
		require.True(t, errors.BAD_ORIGIN.Is(outcome.Error))
		require.Equal(t, 1, outcome.Executed)
	})

	t.Run("leftovers are trapped and claimed", func(t *testing.T) {
		env := withRegistry(t)
		program := domain.Program{
			deposited(100),
			domain.DepositAsset(domain.AllCounted(1), mustLocation(t, 0, domain.GeneralIndex(5))),
		}

		outcome := env.svc.Execute(ctx, reserve, domain.NewVersionedProgram(program))
		require.NotNil(t, outcome.Error)
		require.True(t, errors.INVALID_LOCATION.Is(outcome.Error))
		require.Equal(t, 1, outcome.Executed)
		require.NotNil(t, outcome.Trapped)
		require.EqualValues(t, 1, outcome.Trapped.Count)
		require.True(t, outcome.Trapped.Origin.Equal(reserve))

		trapped := outcome.Trapped.Assets
		require.Len(t, trapped, 1)
		require.EqualValues(t, 100-testConfig.Trap.FungibleRate, trapped[0].Fun.Amount)

		claim := domain.Program{
			domain.ClaimAsset(trapped, domain.Here()),
			domain.DepositAsset(domain.AllCounted(1), beneficiary),
		}
		outcome = env.svc.Execute(ctx, reserve, domain.NewVersionedProgram(claim))
		require.Nil(t, outcome.Error)
		require.Nil(t, outcome.Trapped)
		require.EqualValues(t, 97, balanceOf(t, env, alice, usdtCurrency))

		outcome = env.svc.Execute(ctx, reserve, domain.NewVersionedProgram(claim))
		require.NotNil(t, outcome.Error)
		require.True(t, errors.NOT_TRAPPED.Is(outcome.Error))
	})

	t.Run("partially held definite deposit", func(t *testing.T) {
		env := withRegistry(t)
		other := mustLocation(t, 1, domain.Parachain(1000), domain.GeneralIndex(7))
		program := domain.Program{
			deposited(100),
			domain.DepositAsset(domain.Definite(mustAssets(t,
				domain.NewFungibleAsset(usdt, 50),
				domain.NewFungibleAsset(other, 1),
			)), beneficiary),
		}

		outcome := env.svc.Execute(ctx, reserve, domain.NewVersionedProgram(program))
		require.NotNil(t, outcome.Error)
		require.True(t, errors.INVALID_ASSETS.Is(outcome.Error))
		require.Equal(t, 1, outcome.Executed)
		require.Zero(t, balanceOf(t, env, alice, usdtCurrency))
		require.NotNil(t, outcome.Trapped)
		require.Len(t, outcome.Trapped.Assets, 1)
		require.EqualValues(t, 100-testConfig.Trap.FungibleRate, outcome.Trapped.Assets[0].Fun.Amount)
	})

	t.Run("claim overflowing the holding", func(t *testing.T) {
		env := withRegistry(t)
		dropped, err := env.svc.DropAssets(
			ctx, reserve, mustAssets(t, domain.NewFungibleAsset(usdt, 100)),
		)
		require.Nil(t, err)
		require.NotNil(t, dropped.Record)

		program := domain.Program{
			deposited(math.MaxUint64),
			domain.ClaimAsset(dropped.Record.Assets, domain.Here()),
		}
		outcome := env.svc.Execute(ctx, reserve, domain.NewVersionedProgram(program))
		require.NotNil(t, outcome.Error)
		require.True(t, errors.INVALID_ASSETS.Is(outcome.Error))
		require.Equal(t, 1, outcome.Executed)

		records, err := env.svc.TrappedAssets(ctx)
		require.Nil(t, err)
		var found bool
		for _, r := range records {
			if r.Hash == dropped.Record.Hash {
				found = true
				require.EqualValues(t, 1, r.Count)
			}
		}
		require.True(t, found)
	})

	t.Run("fees beyond holding", func(t *testing.T) {
		env := withRegistry(t)
		program := domain.Program{
			deposited(5),
			domain.BuyExecution(domain.NewFungibleAsset(usdt, 10), domain.Unlimited()),
		}

		outcome := env.svc.Execute(ctx, reserve, domain.NewVersionedProgram(program))
		require.NotNil(t, outcome.Error)
		require.True(t, errors.INSUFFICIENT_FUNDS.Is(outcome.Error))
		require.NotNil(t, outcome.Trapped)
		require.EqualValues(t, 2, outcome.Trapped.Assets[0].Fun.Amount)
	})

	t.Run("withdraw and reserve transfer", func(t *testing.T) {
		dest := domain.SiblingChain(2000)
		remote := mustLocation(t, 0, domain.AccountId32(nil, [32]byte{7}))
		program := domain.Program{
			domain.WithdrawAsset(mustAssets(t, domain.NewFungibleAsset(domain.Here(), 500))),
			domain.DepositReserveAsset(domain.AllCounted(1), dest, domain.Program{
				domain.DepositAsset(domain.AllCounted(1), remote),
			}),
		}

		t.Run("enqueued", func(t *testing.T) {
			env := newTestEnv(t)
			env.transport.On("Enqueue", mock.Anything, mock.Anything).Return(nil)
			require.Nil(t, env.svc.Deposit(ctx, alice, domain.NativeCurrency, 1000))
			require.Nil(t, env.svc.SetDestinationVersion(ctx, dest, domain.V3))

			outcome := env.svc.Execute(ctx, beneficiary, domain.NewVersionedProgram(program))
			require.Nil(t, outcome.Error)
			require.Nil(t, outcome.Trapped)
			require.EqualValues(t, 500, balanceOf(t, env, alice, domain.NativeCurrency))
			require.EqualValues(t, 500, balanceOf(t, env, "sibling:2000", domain.NativeCurrency))

			msg, sent := enqueued(t, env)
			require.True(t, msg.Destination.Equal(dest))
			require.Len(t, sent.V3, 3)
			require.Equal(t, domain.InstrReserveAssetDeposited, sent.V3[0].Kind)
			require.True(t, sent.V3[0].Assets[0].Id.Location.Equal(domain.SiblingChain(1000)))
			require.Equal(t, domain.InstrClearOrigin, sent.V3[1].Kind)
			require.True(t, sent.V3[2].Location.Equal(remote))
		})

		t.Run("enqueue failure", func(t *testing.T) {
			env := newTestEnv(t)
			env.transport.On("Enqueue", mock.Anything, mock.Anything).
				Return(fmt.Errorf("queue full"))
			require.Nil(t, env.svc.Deposit(ctx, alice, domain.NativeCurrency, 1000))
			require.Nil(t, env.svc.SetDestinationVersion(ctx, dest, domain.V3))

			outcome := env.svc.Execute(ctx, beneficiary, domain.NewVersionedProgram(program))
			require.NotNil(t, outcome.Error)
			require.True(t, errors.ENQUEUE_FAILED.Is(outcome.Error))
			require.Zero(t, balanceOf(t, env, "sibling:2000", domain.NativeCurrency))
			require.NotNil(t, outcome.Trapped)
			require.EqualValues(t, 500-testConfig.Trap.NativeRate, outcome.Trapped.Assets[0].Fun.Amount)
		})

		t.Run("insufficient balance", func(t *testing.T) {
			env := newTestEnv(t)
			require.Nil(t, env.svc.Deposit(ctx, alice, domain.NativeCurrency, 100))

			outcome := env.svc.Execute(ctx, beneficiary, domain.NewVersionedProgram(program))
			require.NotNil(t, outcome.Error)
			require.True(t, errors.INSUFFICIENT_FUNDS.Is(outcome.Error))
			require.Zero(t, outcome.Executed)
			require.Nil(t, outcome.Trapped)
			require.EqualValues(t, 100, balanceOf(t, env, alice, domain.NativeCurrency))
			env.transport.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
		})
	})
}
