package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/ticket-marketplace/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Balance(ctx context.Context, token string, account models.Address) (decimal.Decimal, error) {
	var balance models.TokenBalance
	err := conn(ctx, r.db).
		Where("token = ? AND account = ?", token, account).
		First(&balance).Error
	if err != nil {
		if notFound(err) == ErrNotFound {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return balance.Amount, nil
}

func (r *tokenRepository) Credit(ctx context.Context, token string, account models.Address, amount decimal.Decimal) error {
	row := models.TokenBalance{Token: token, Account: account, Amount: amount, UpdatedAt: time.Now()}
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token"}, {Name: "account"}},
		DoUpdates: clause.Assignments(map[string]any{
			"amount":     gorm.Expr("token_balances.amount + EXCLUDED.amount"),
			"updated_at": gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(&row).Error
}

// Debit is a conditional update, so two concurrent debits can never take the
// balance below zero.
func (r *tokenRepository) Debit(ctx context.Context, token string, account models.Address, amount decimal.Decimal) (bool, error) {
	result := conn(ctx, r.db).
		Model(&models.TokenBalance{}).
		Where("token = ? AND account = ? AND amount >= ?", token, account, amount).
		Updates(map[string]any{
			"amount":     gorm.Expr("amount - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *tokenRepository) Allowance(ctx context.Context, token string, owner, spender models.Address) (decimal.Decimal, error) {
	var allowance models.TokenAllowance
	err := conn(ctx, r.db).
		Where("token = ? AND owner = ? AND spender = ?", token, owner, spender).
		First(&allowance).Error
	if err != nil {
		if notFound(err) == ErrNotFound {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return allowance.Amount, nil
}

func (r *tokenRepository) SetAllowance(ctx context.Context, token string, owner, spender models.Address, amount decimal.Decimal) error {
	row := models.TokenAllowance{Token: token, Owner: owner, Spender: spender, Amount: amount, UpdatedAt: time.Now()}
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}, {Name: "owner"}, {Name: "spender"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&row).Error
}

func (r *tokenRepository) SpendAllowance(ctx context.Context, token string, owner, spender models.Address, amount decimal.Decimal) (bool, error) {
	result := conn(ctx, r.db).
		Model(&models.TokenAllowance{}).
		Where("token = ? AND owner = ? AND spender = ? AND amount >= ?", token, owner, spender, amount).
		Updates(map[string]any{
			"amount":     gorm.Expr("amount - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
