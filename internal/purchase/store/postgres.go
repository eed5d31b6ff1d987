package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"teranga/internal/purchase/models"
	id "teranga/pkg/domain"
	"teranga/pkg/platform/sentinel"
	txcontext "teranga/pkg/platform/tx"
)

// PostgresStore persists purchases in the purchases, loan_applications and
// purchase_messages tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const purchaseSelect = `
SELECT p.id, p.user_id, p.property_id, p.status, p.payment_method, p.payment_reference,
       p.paid_amount, p.paid_at, p.created_at, p.updated_at,
       la.status, la.documents, la.created_at
FROM purchases p
LEFT JOIN loan_applications la ON la.purchase_id = p.id`

const foreignKeyViolation = "23503"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPurchase(row rowScanner) (*models.Purchase, error) {
	var (
		p          models.Purchase
		purchaseID string
		userID     string
		propertyID string
		method     sql.NullString
		reference  sql.NullString
		amount     decimal.NullDecimal
		paidAt     sql.NullTime
		loanStatus sql.NullString
		loanDocs   []byte
		loanAt     sql.NullTime
	)
	if err := row.Scan(&purchaseID, &userID, &propertyID, &p.Status, &method, &reference,
		&amount, &paidAt, &p.CreatedAt, &p.UpdatedAt, &loanStatus, &loanDocs, &loanAt); err != nil {
		return nil, err
	}

	var err error
	if p.ID, err = id.ParsePurchaseID(purchaseID); err != nil {
		return nil, fmt.Errorf("decode purchase id: %w", err)
	}
	if p.UserID, err = id.ParseUserID(userID); err != nil {
		return nil, fmt.Errorf("decode user id: %w", err)
	}
	if p.PropertyID, err = id.ParsePropertyID(propertyID); err != nil {
		return nil, fmt.Errorf("decode property id: %w", err)
	}
	if method.Valid {
		m := models.PaymentMethod(method.String)
		p.PaymentMethod = &m
	}
	if reference.Valid {
		p.PaymentReference = &reference.String
	}
	if amount.Valid {
		p.PaidAmount = &amount.Decimal
	}
	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	if loanStatus.Valid {
		loan := models.LoanApplication{Status: models.LoanStatus(loanStatus.String), SubmittedAt: loanAt.Time}
		if err := json.Unmarshal(loanDocs, &loan.Documents); err != nil {
			return nil, fmt.Errorf("decode loan documents: %w", err)
		}
		p.LoanApplication = &loan
	}
	return &p, nil
}

func (s *PostgresStore) queryOne(ctx context.Context, query string, args ...any) (*models.Purchase, error) {
	p, err := scanPurchase(txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read purchase: %w", err)
	}
	return p, nil
}

// CreateOrGetActive inserts p unless the buyer already has an active purchase
// for the property, in which case that purchase is returned with created=false.
func (s *PostgresStore) CreateOrGetActive(ctx context.Context, p *models.Purchase) (*models.Purchase, bool, error) {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO purchases (id, user_id, property_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, property_id) WHERE status NOT IN ('completed', 'cancelled') DO NOTHING`,
		p.ID.String(), p.UserID.String(), p.PropertyID.String(), string(p.Status), p.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert purchase: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert purchase: %w", err)
	}
	if n == 1 {
		created, err := s.FindByID(ctx, p.ID)
		return created, true, err
	}
	existing, err := s.FindActive(ctx, p.UserID, p.PropertyID)
	return existing, false, err
}

func (s *PostgresStore) FindByID(ctx context.Context, purchaseID id.PurchaseID) (*models.Purchase, error) {
	return s.queryOne(ctx, purchaseSelect+"\nWHERE p.id = $1", purchaseID.String())
}

func (s *PostgresStore) FindActive(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (*models.Purchase, error) {
	return s.queryOne(ctx, purchaseSelect+`
WHERE p.user_id = $1 AND p.property_id = $2 AND p.status NOT IN ('completed', 'cancelled')`,
		userID.String(), propertyID.String())
}

func (s *PostgresStore) LatestActive(ctx context.Context, userID id.UserID) (*models.Purchase, error) {
	return s.queryOne(ctx, purchaseSelect+`
WHERE p.user_id = $1 AND p.status NOT IN ('completed', 'cancelled')
ORDER BY p.created_at DESC, p.id
LIMIT 1`, userID.String())
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]models.Purchase, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx,
		purchaseSelect+"\nWHERE p.user_id = $1\nORDER BY p.created_at DESC, p.id", userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	out := make([]models.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchases: %w", err)
	}
	return out, nil
}

func statusStrings(statuses []models.Status) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}

// guardFailure tells a missing row from one in an unexpected status after a
// guarded update matched nothing.
func (s *PostgresStore) guardFailure(ctx context.Context, purchaseID id.PurchaseID) error {
	var exists bool
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM purchases WHERE id = $1)`, purchaseID.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check purchase: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrInvalidState
}

func (s *PostgresStore) execGuarded(ctx context.Context, purchaseID id.PurchaseID, query string, args ...any) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	if n == 0 {
		return s.guardFailure(ctx, purchaseID)
	}
	return nil
}

func (s *PostgresStore) Transition(ctx context.Context, purchaseID id.PurchaseID, from []models.Status, to models.Status, at time.Time) (*models.Purchase, error) {
	err := s.execGuarded(ctx, purchaseID, `
		UPDATE purchases SET status = $2, updated_at = $3
		WHERE id = $1 AND status = ANY($4)`,
		purchaseID.String(), string(to), at, pq.Array(statusStrings(from)))
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, purchaseID)
}

func (s *PostgresStore) CompletePayment(ctx context.Context, purchaseID id.PurchaseID, payment Payment) (*models.Purchase, error) {
	err := s.execGuarded(ctx, purchaseID, `
		UPDATE purchases
		SET status = 'completed', payment_method = $2, payment_reference = $3,
		    paid_amount = $4, paid_at = $5, updated_at = $5
		WHERE id = $1 AND status = 'pending_payment'`,
		purchaseID.String(), string(payment.Method), payment.Reference, payment.Amount, payment.PaidAt)
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, purchaseID)
}

// SubmitLoanApplication moves the purchase to processing and records the loan
// request in one transaction.
func (s *PostgresStore) SubmitLoanApplication(ctx context.Context, purchaseID id.PurchaseID, loan models.LoanApplication) (*models.Purchase, error) {
	docs, err := json.Marshal(loan.Documents)
	if err != nil {
		return nil, fmt.Errorf("encode loan documents: %w", err)
	}
	err = txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		if err := s.execGuarded(ctx, purchaseID, `
			UPDATE purchases SET status = 'processing', updated_at = $2
			WHERE id = $1 AND status = 'pending_payment'`,
			purchaseID.String(), loan.SubmittedAt); err != nil {
			return err
		}
		_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
			INSERT INTO loan_applications (purchase_id, status, documents, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (purchase_id) DO UPDATE
			SET status = EXCLUDED.status, documents = EXCLUDED.documents, updated_at = EXCLUDED.updated_at`,
			purchaseID.String(), string(loan.Status), docs, loan.SubmittedAt)
		if err != nil {
			return fmt.Errorf("failed to insert loan application: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, purchaseID)
}

func (s *PostgresStore) DeleteMessages(ctx context.Context, purchaseID id.PurchaseID) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM purchase_messages WHERE purchase_id = $1`, purchaseID.String())
	if err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, purchaseID id.PurchaseID, statuses []models.Status) error {
	return s.execGuarded(ctx, purchaseID,
		`DELETE FROM purchases WHERE id = $1 AND status = ANY($2)`,
		purchaseID.String(), pq.Array(statusStrings(statuses)))
}

func (s *PostgresStore) AppendMessage(ctx context.Context, msg models.Message) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO purchase_messages (id, purchase_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.ID.String(), msg.PurchaseID.String(), msg.SenderID.String(), msg.Content, msg.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, purchaseID id.PurchaseID) ([]models.Message, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, `
		SELECT id, purchase_id, sender_id, content, created_at
		FROM purchase_messages
		WHERE purchase_id = $1
		ORDER BY created_at, id`, purchaseID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	out := make([]models.Message, 0)
	for rows.Next() {
		var (
			m                       models.Message
			msgID, purchase, sender string
		)
		if err := rows.Scan(&msgID, &purchase, &sender, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if m.ID, err = id.ParseMessageID(msgID); err != nil {
			return nil, fmt.Errorf("decode message id: %w", err)
		}
		if m.PurchaseID, err = id.ParsePurchaseID(purchase); err != nil {
			return nil, fmt.Errorf("decode purchase id: %w", err)
		}
		if m.SenderID, err = id.ParseUserID(sender); err != nil {
			return nil, fmt.Errorf("decode sender id: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return out, nil
}
