package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/groupcard/internal/models"
	"github.com/mmynk/groupcard/internal/storage"
)

const selectTransaction = `
	SELECT id, group_id, total_cents, merchant, merchant_auth_status, status,
	       confirmations, holds, auth_code, created_at, version
	FROM group_transactions`

// CreateTransaction inserts a new transaction at version 1.
func (s *PostgresStore) CreateTransaction(ctx context.Context, txn *models.GroupTransaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}
	txn.Version = 1

	_, err := s.pool.Exec(ctx,
		`INSERT INTO group_transactions
		 (id, group_id, total_cents, merchant, merchant_auth_status, status, confirmations, holds, auth_code, created_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		txn.ID, txn.GroupID, txn.TotalCents, txn.Merchant, string(txn.MerchantAuthStatus), string(txn.Status),
		confirmationDocs(txn.Confirmations), holdDocs(txn.Holds), txn.AuthCode, txn.CreatedAt, txn.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction %s already exists", txn.ID)
		}
		return fmt.Errorf("failed to insert group transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetTransaction(ctx context.Context, transactionID string) (*models.GroupTransaction, error) {
	txn, err := scanTransaction(s.pool.QueryRow(ctx, selectTransaction+" WHERE id = $1", transactionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

func (s *PostgresStore) GetGroupTransaction(ctx context.Context, groupID, transactionID string) (*models.GroupTransaction, error) {
	txn, err := scanTransaction(s.pool.QueryRow(ctx,
		selectTransaction+" WHERE id = $1 AND group_id = $2", transactionID, groupID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s in group %s: %w", transactionID, groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

func (s *PostgresStore) ListTransactionsByGroup(ctx context.Context, groupID string) ([]*models.GroupTransaction, error) {
	rows, err := s.pool.Query(ctx,
		selectTransaction+" WHERE group_id = $1 ORDER BY created_at DESC, seq DESC", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.GroupTransaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

// UpdateTransaction writes the next state in one statement guarded by the version column.
func (s *PostgresStore) UpdateTransaction(ctx context.Context, txn *models.GroupTransaction) error {
	var version int64
	err := s.pool.QueryRow(ctx,
		`UPDATE group_transactions
		 SET merchant_auth_status = $1, status = $2, confirmations = $3, holds = $4,
		     auth_code = $5, version = version + 1
		 WHERE id = $6 AND version = $7
		 RETURNING version`,
		string(txn.MerchantAuthStatus), string(txn.Status), confirmationDocs(txn.Confirmations),
		holdDocs(txn.Holds), txn.AuthCode, txn.ID, txn.Version,
	).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		var current int64
		err := s.pool.QueryRow(ctx, "SELECT version FROM group_transactions WHERE id = $1", txn.ID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("transaction %s: %w", txn.ID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read transaction version: %w", err)
		}
		return fmt.Errorf("transaction %s at version %d, have %d: %w",
			txn.ID, current, txn.Version, storage.ErrVersionConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	txn.Version = version
	return nil
}

func scanTransaction(row pgx.Row) (*models.GroupTransaction, error) {
	var (
		txn                models.GroupTransaction
		authStatus, status string
		confirmations      []confirmationDoc
		holds              []holdDoc
	)
	err := row.Scan(&txn.ID, &txn.GroupID, &txn.TotalCents, &txn.Merchant, &authStatus, &status,
		&confirmations, &holds, &txn.AuthCode, &txn.CreatedAt, &txn.Version)
	if err != nil {
		return nil, err
	}
	txn.MerchantAuthStatus = models.MerchantAuthStatus(authStatus)
	txn.Status = models.TransactionStatus(status)
	for _, c := range confirmations {
		txn.Confirmations = append(txn.Confirmations, models.MemberConfirmation{
			MemberID: c.MemberID, MemberName: c.MemberName,
			Confirmed: c.Confirmed, Declined: c.Declined, ConfirmedAt: c.ConfirmedAt,
		})
	}
	for _, h := range holds {
		txn.Holds = append(txn.Holds, models.MemberHold{
			MemberID: h.MemberID, MemberName: h.MemberName, AmountCents: h.AmountCents,
			AuthRef: h.AuthRef, Status: models.HoldStatus(h.Status), Error: h.Error,
		})
	}
	return &txn, nil
}

func confirmationDocs(in []models.MemberConfirmation) []confirmationDoc {
	out := make([]confirmationDoc, len(in))
	for i, c := range in {
		out[i] = confirmationDoc{
			MemberID: c.MemberID, MemberName: c.MemberName,
			Confirmed: c.Confirmed, Declined: c.Declined, ConfirmedAt: c.ConfirmedAt,
		}
	}
	return out
}

func holdDocs(in []models.MemberHold) []holdDoc {
	out := make([]holdDoc, len(in))
	for i, h := range in {
		out[i] = holdDoc{
			MemberID: h.MemberID, MemberName: h.MemberName, AmountCents: h.AmountCents,
			AuthRef: h.AuthRef, Status: string(h.Status), Error: h.Error,
		}
	}
	return out
}
