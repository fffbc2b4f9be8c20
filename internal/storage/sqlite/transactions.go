package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/groupcard/internal/models"
	"github.com/mmynk/groupcard/internal/storage"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const selectTransaction = `
	SELECT id, group_id, total_cents, merchant, merchant_auth_status, status, auth_code, created_at, version
	FROM group_transactions`

// CreateTransaction inserts a new transaction with its confirmations and holds.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *models.GroupTransaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}
	txn.Version = 1

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO group_transactions
		 (id, group_id, total_cents, merchant, merchant_auth_status, status, auth_code, created_at, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.GroupID, txn.TotalCents, txn.Merchant, string(txn.MerchantAuthStatus),
		string(txn.Status), txn.AuthCode, txn.CreatedAt, txn.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group transaction: %w", err)
	}

	if err := insertChildren(ctx, tx, txn); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID across all groups.
func (s *SQLiteStore) GetTransaction(ctx context.Context, transactionID string) (*models.GroupTransaction, error) {
	var txn *models.GroupTransaction
	err := s.readTx(ctx, func(tx *sql.Tx) error {
		var err error
		txn, err = scanTransaction(tx.QueryRowContext(ctx, selectTransaction+" WHERE id = ?", transactionID))
		if isNoRows(err) {
			return fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get transaction: %w", err)
		}
		return loadChildren(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// GetGroupTransaction retrieves a transaction by ID within a group.
func (s *SQLiteStore) GetGroupTransaction(ctx context.Context, groupID, transactionID string) (*models.GroupTransaction, error) {
	var txn *models.GroupTransaction
	err := s.readTx(ctx, func(tx *sql.Tx) error {
		var err error
		txn, err = scanTransaction(tx.QueryRowContext(ctx,
			selectTransaction+" WHERE id = ? AND group_id = ?", transactionID, groupID))
		if isNoRows(err) {
			return fmt.Errorf("transaction %s in group %s: %w", transactionID, groupID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get transaction: %w", err)
		}
		return loadChildren(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// ListTransactionsByGroup returns the group's transactions, latest first.
func (s *SQLiteStore) ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.GroupTransaction, error) {
	var txns []*models.GroupTransaction
	err := s.readTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			selectTransaction+" WHERE group_id = ? ORDER BY created_at DESC, rowid DESC", groupID)
		if err != nil {
			return fmt.Errorf("failed to list transactions: %w", err)
		}

		// Read every header before loading children; a transaction runs on
		// one connection, so nested queries would block on the open cursor.
		for rows.Next() {
			txn, err := scanTransaction(rows)
			if err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan transaction: %w", err)
			}
			txns = append(txns, txn)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("failed to iterate transactions: %w", err)
		}
		rows.Close()

		for _, txn := range txns {
			if err := loadChildren(ctx, tx, txn); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// readTx runs fn in a read-only transaction so a header row and its
// children come from the same committed version.
func (s *SQLiteStore) readTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateTransaction writes the next state of a transaction if its version still matches.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, txn *models.GroupTransaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE group_transactions
		 SET merchant_auth_status = ?, status = ?, auth_code = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		string(txn.MerchantAuthStatus), string(txn.Status), txn.AuthCode, txn.ID, txn.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		var version int64
		err := tx.QueryRowContext(ctx, "SELECT version FROM group_transactions WHERE id = ?", txn.ID).Scan(&version)
		if isNoRows(err) {
			return fmt.Errorf("transaction %s: %w", txn.ID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read transaction version: %w", err)
		}
		return fmt.Errorf("transaction %s at version %d, have %d: %w",
			txn.ID, version, txn.Version, storage.ErrVersionConflict)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM member_confirmations WHERE transaction_id = ?", txn.ID); err != nil {
		return fmt.Errorf("failed to clear confirmations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM member_holds WHERE transaction_id = ?", txn.ID); err != nil {
		return fmt.Errorf("failed to clear holds: %w", err)
	}
	if err := insertChildren(ctx, tx, txn); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	txn.Version++
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.GroupTransaction, error) {
	var (
		txn                models.GroupTransaction
		authStatus, status string
	)
	err := row.Scan(&txn.ID, &txn.GroupID, &txn.TotalCents, &txn.Merchant,
		&authStatus, &status, &txn.AuthCode, &txn.CreatedAt, &txn.Version)
	if err != nil {
		return nil, err
	}
	txn.MerchantAuthStatus = models.MerchantAuthStatus(authStatus)
	txn.Status = models.TransactionStatus(status)
	return &txn, nil
}

func insertChildren(ctx context.Context, q querier, txn *models.GroupTransaction) error {
	for i, c := range txn.Confirmations {
		_, err := q.ExecContext(ctx,
			`INSERT INTO member_confirmations
			 (transaction_id, position, member_id, member_name, confirmed, declined, confirmed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			txn.ID, i, c.MemberID, c.MemberName, c.Confirmed, c.Declined, c.ConfirmedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert confirmation: %w", err)
		}
	}
	for i, h := range txn.Holds {
		_, err := q.ExecContext(ctx,
			`INSERT INTO member_holds
			 (transaction_id, position, member_id, member_name, amount_cents, auth_ref, status, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			txn.ID, i, h.MemberID, h.MemberName, h.AmountCents, h.AuthRef, string(h.Status), h.Error,
		)
		if err != nil {
			return fmt.Errorf("failed to insert hold: %w", err)
		}
	}
	return nil
}

func loadChildren(ctx context.Context, q querier, txn *models.GroupTransaction) error {
	rows, err := q.QueryContext(ctx,
		`SELECT member_id, member_name, confirmed, declined, confirmed_at
		 FROM member_confirmations WHERE transaction_id = ? ORDER BY position`,
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get confirmations: %w", err)
	}
	for rows.Next() {
		var c models.MemberConfirmation
		if err := rows.Scan(&c.MemberID, &c.MemberName, &c.Confirmed, &c.Declined, &c.ConfirmedAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan confirmation: %w", err)
		}
		txn.Confirmations = append(txn.Confirmations, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to iterate confirmations: %w", err)
	}
	rows.Close()

	rows, err = q.QueryContext(ctx,
		`SELECT member_id, member_name, amount_cents, auth_ref, status, error
		 FROM member_holds WHERE transaction_id = ? ORDER BY position`,
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get holds: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			h      models.MemberHold
			status string
		)
		if err := rows.Scan(&h.MemberID, &h.MemberName, &h.AmountCents, &h.AuthRef, &status, &h.Error); err != nil {
			return fmt.Errorf("failed to scan hold: %w", err)
		}
		h.Status = models.HoldStatus(status)
		txn.Holds = append(txn.Holds, h)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate holds: %w", err)
	}
	return nil
}
