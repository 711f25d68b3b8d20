package payment

import (
	"context"
	"fmt"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/Eursukkul/ticket-marketplace/internal/repository"
	"github.com/shopspring/decimal"
)

// TokenLedger keeps balances and allowances in the marketplace store, so every
// movement joins the transaction already carried by the context.
type TokenLedger struct {
	repo repository.TokenRepository
	tx   repository.TxManager
}

func NewTokenLedger(repo repository.TokenRepository, tx repository.TxManager) *TokenLedger {
	return &TokenLedger{repo: repo, tx: tx}
}

func (l *TokenLedger) Ledger(token string, operator models.Address) Ledger {
	return &account{ledger: l, token: token, operator: operator}
}

func (l *TokenLedger) BalanceOf(ctx context.Context, token string, account models.Address) (decimal.Decimal, error) {
	return l.repo.Balance(ctx, token, account)
}

func (l *TokenLedger) Allowance(ctx context.Context, token string, owner, spender models.Address) (decimal.Decimal, error) {
	return l.repo.Allowance(ctx, token, owner, spender)
}

// Approve sets the allowance owner grants spender, replacing any prior one.
func (l *TokenLedger) Approve(ctx context.Context, token string, owner, spender models.Address, amount decimal.Decimal) error {
	if owner.IsNull() || spender.IsNull() {
		return ErrNullAccount
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	return l.repo.SetAllowance(ctx, token, owner, spender, amount)
}

// Mint credits new tokens to an account. Used to fund accounts in test and
// demo deployments.
func (l *TokenLedger) Mint(ctx context.Context, token string, to models.Address, amount decimal.Decimal) error {
	if to.IsNull() {
		return ErrNullAccount
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	return l.repo.Credit(ctx, token, to, amount)
}

func (l *TokenLedger) move(ctx context.Context, token string, from, to models.Address, amount decimal.Decimal) error {
	if from.IsNull() || to.IsNull() {
		return ErrNullAccount
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}
	return l.tx.WithTx(ctx, func(ctx context.Context) error {
		ok, err := l.repo.Debit(ctx, token, from, amount)
		if err != nil {
			return fmt.Errorf("debit %s: %w", from, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s has less than %s %s", ErrInsufficientBalance, from, amount, token)
		}
		if err := l.repo.Credit(ctx, token, to, amount); err != nil {
			return fmt.Errorf("credit %s: %w", to, err)
		}
		return nil
	})
}

type account struct {
	ledger   *TokenLedger
	token    string
	operator models.Address
}

func (a *account) Transfer(ctx context.Context, to models.Address, amount decimal.Decimal) error {
	return a.ledger.move(ctx, a.token, a.operator, to, amount)
}

func (a *account) TransferFrom(ctx context.Context, from, to models.Address, amount decimal.Decimal) error {
	if from == a.operator {
		return a.Transfer(ctx, to, amount)
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}
	return a.ledger.tx.WithTx(ctx, func(ctx context.Context) error {
		ok, err := a.ledger.repo.SpendAllowance(ctx, a.token, from, a.operator, amount)
		if err != nil {
			return fmt.Errorf("spend allowance: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: %s has not approved %s for %s %s", ErrInsufficientAllowance, from, a.operator, amount, a.token)
		}
		return a.ledger.move(ctx, a.token, from, to, amount)
	})
}

func (a *account) BalanceOf(ctx context.Context, account models.Address) (decimal.Decimal, error) {
	return a.ledger.repo.Balance(ctx, a.token, account)
}

func validAmount(amount decimal.Decimal) error {
	if amount.IsNegative() || !amount.IsInteger() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	return nil
}
