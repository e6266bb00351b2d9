package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aryan0dhankhar/ordertrack/internal/domain"
)

const orderColumns = `id, project_id, title, description, product_url, quantity, invoice_number, payment_status, delivery_status, created_at`

// PostgresOrderRepository implements domain.OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresOrderRepository creates a new order repository
func NewPostgresOrderRepository(db *sql.DB, logger *slog.Logger) *PostgresOrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresOrderRepository{db: db, logger: logger}
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID,
		&o.ProjectID,
		&o.Title,
		&o.Description,
		&o.ProductURL,
		&o.Quantity,
		&o.InvoiceNumber,
		&o.PaymentStatus,
		&o.DeliveryStatus,
		&o.CreatedAt,
	)
	return o, err
}

// Create inserts an order. A missing parent project surfaces as
// domain.ErrProjectNotFound.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (project_id, title, description, product_url, quantity, invoice_number, payment_status, delivery_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		order.ProjectID,
		order.Title,
		order.Description,
		order.ProductURL,
		order.Quantity,
		order.InvoiceNumber,
		order.PaymentStatus,
		order.DeliveryStatus,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProjectNotFound
		}
		r.logger.Error("failed to create order",
			slog.Int64("project_id", order.ProjectID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order by ID
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// List returns one page of a project's orders, newest first, together with
// the number of orders matching the filter across all pages.
func (r *PostgresOrderRepository) List(ctx context.Context, filter domain.OrderFilter, page domain.Page) ([]*domain.Order, int, error) {
	where, args := buildOrderWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM orders WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("failed to count orders",
			slog.Int64("project_id", filter.ProjectID),
			slog.String("error", err.Error()),
		)
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	n := len(args)
	listQuery := fmt.Sprintf(
		`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, n+1, n+2,
	)
	pageArgs := append(append([]any{}, args...), page.Limit, page.Offset())

	rows, err := r.db.QueryContext(ctx, listQuery, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, total, nil
}

// Update writes only the columns present in patch. An empty patch returns
// the stored order unchanged.
func (r *PostgresOrderRepository) Update(ctx context.Context, id int64, patch domain.OrderPatch) (*domain.Order, error) {
	sets, args := buildOrderSet(patch)
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE orders SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), orderColumns,
	)

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		r.logger.Error("failed to update order",
			slog.Int64("order_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return o, nil
}

// Delete removes an order and reports whether a row existed
func (r *PostgresOrderRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete order: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows > 0, nil
}

// buildOrderWhere renders the conjunctive predicate for filter. The project
// predicate is always present.
func buildOrderWhere(filter domain.OrderFilter) (string, []any) {
	conds := []string{"project_id = $1"}
	args := []any{filter.ProjectID}

	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		conds = append(conds, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if filter.DeliveryStatus != "" {
		args = append(args, filter.DeliveryStatus)
		conds = append(conds, fmt.Sprintf("delivery_status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		conds = append(conds, fmt.Sprintf(`title ILIKE $%d ESCAPE '\'`, len(args)))
	}

	return strings.Join(conds, " AND "), args
}

func buildOrderSet(patch domain.OrderPatch) ([]string, []any) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description.Set {
		add("description", patch.Description.Value)
	}
	if patch.ProductURL.Set {
		add("product_url", patch.ProductURL.Value)
	}
	if patch.Quantity != nil {
		add("quantity", *patch.Quantity)
	}
	if patch.InvoiceNumber.Set {
		add("invoice_number", patch.InvoiceNumber.Value)
	}
	if patch.PaymentStatus != nil {
		add("payment_status", *patch.PaymentStatus)
	}
	if patch.DeliveryStatus != nil {
		add("delivery_status", *patch.DeliveryStatus)
	}
	return sets, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
