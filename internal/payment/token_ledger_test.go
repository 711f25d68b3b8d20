package payment_test

import (
	"context"
	"testing"

	"github.com/Eursukkul/ticket-marketplace/internal/payment"
	"github.com/Eursukkul/ticket-marketplace/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T) *payment.TokenLedger {
	t.Helper()
	store := memory.NewStore()
	ledger := payment.NewTokenLedger(store.Tokens(), store)
	require.NoError(t, ledger.Mint(context.Background(), "THB", "alice", decimal.NewFromInt(100)))
	return ledger
}

func TestTransfer(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()
	alice := ledger.Ledger("THB", "alice")

	require.NoError(t, alice.Transfer(ctx, "bob", decimal.NewFromInt(30)))

	err := alice.Transfer(ctx, "bob", decimal.NewFromInt(71))
	assert.ErrorIs(t, err, payment.ErrInsufficientBalance)
	assert.ErrorIs(t, err, payment.ErrInsufficientFunds)

	bob, err := alice.BalanceOf(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, bob.Equal(decimal.NewFromInt(30)))

	err = alice.Transfer(ctx, "bob", decimal.RequireFromString("1.5"))
	assert.ErrorIs(t, err, payment.ErrInvalidAmount)

	err = alice.Transfer(ctx, "", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, payment.ErrNullAccount)
}

func TestTransferFrom_SpendsAllowance(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()
	market := ledger.Ledger("THB", "market")

	err := market.TransferFrom(ctx, "alice", "market", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, payment.ErrInsufficientAllowance)

	require.NoError(t, ledger.Approve(ctx, "THB", "alice", "market", decimal.NewFromInt(50)))
	require.NoError(t, market.TransferFrom(ctx, "alice", "market", decimal.NewFromInt(40)))

	left, err := ledger.Allowance(ctx, "THB", "alice", "market")
	require.NoError(t, err)
	assert.True(t, left.Equal(decimal.NewFromInt(10)))

	held, err := ledger.BalanceOf(ctx, "THB", "market")
	require.NoError(t, err)
	assert.True(t, held.Equal(decimal.NewFromInt(40)))
}

func TestTransferFrom_BalanceTooLowKeepsAllowance(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()
	market := ledger.Ledger("THB", "market")
	require.NoError(t, ledger.Approve(ctx, "THB", "alice", "market", decimal.NewFromInt(500)))

	err := market.TransferFrom(ctx, "alice", "bob", decimal.NewFromInt(200))
	assert.ErrorIs(t, err, payment.ErrInsufficientBalance)

	left, err := ledger.Allowance(ctx, "THB", "alice", "market")
	require.NoError(t, err)
	assert.True(t, left.Equal(decimal.NewFromInt(500)))
}

func TestTransferFrom_OwnFundsNeedNoAllowance(t *testing.T) {
	ledger := newLedger(t)
	ctx := context.Background()
	alice := ledger.Ledger("THB", "alice")

	require.NoError(t, alice.TransferFrom(ctx, "alice", "bob", decimal.NewFromInt(5)))
	require.NoError(t, alice.TransferFrom(ctx, "carol", "bob", decimal.Zero))
}
