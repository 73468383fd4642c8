package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/egovle/sevasetu/internal/domain/wallet"
)

// WalletRepository implements wallet.Repository.
type WalletRepository struct {
	db DBTX
}

func NewWalletRepository(db DBTX) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) CreateAccount(ctx context.Context, a *wallet.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO wallet_accounts (user_id, role, balance, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`, a.UserID, a.Role, a.Balance, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *WalletRepository) GetAccount(ctx context.Context, userID uuid.UUID) (*wallet.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, role, balance, created_at, updated_at
		FROM wallet_accounts WHERE user_id=$1
	`, userID)
	var a wallet.Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Role, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// Apply adjusts the balance and appends the ledger entry. The balance guard
// is in the UPDATE itself, so a debit can never race past zero.
func (r *WalletRepository) Apply(ctx context.Context, entry *wallet.Entry) error {
	if entry.Amount <= 0 {
		return wallet.ErrInvalidAmount
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE wallet_accounts SET balance = balance + $1, updated_at = now()
		WHERE user_id = $2 AND balance + $1 >= 0
	`, entry.Delta(), entry.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM wallet_accounts WHERE user_id=$1)`,
			entry.UserID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return wallet.ErrAccountNotFound
		}
		return wallet.ErrInsufficientFunds
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO wallet_entries (entry_id, user_id, kind, amount, reference, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, entry.EntryID, entry.UserID, entry.Kind, entry.Amount, entry.Reference, entry.Note, entry.CreatedAt).
		Scan(&entry.ID)
}

func (r *WalletRepository) Entries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*wallet.Entry, error) {
	query := `
		SELECT id, entry_id, user_id, kind, amount, reference, note, created_at
		FROM wallet_entries WHERE user_id=$1
		ORDER BY id DESC`
	args := []interface{}{userID}
	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $" + itoa(len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += " OFFSET $" + itoa(len(args))
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []*wallet.Entry
	for rows.Next() {
		var e wallet.Entry
		if err := rows.Scan(&e.ID, &e.EntryID, &e.UserID, &e.Kind, &e.Amount, &e.Reference, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
