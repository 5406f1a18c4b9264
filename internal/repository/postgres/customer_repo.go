// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tusafishe-service/internal/domain/customer"
	"tusafishe-service/internal/domain/diagnostics"
	xerrors "tusafishe-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
)

// CustomerRepository keeps customers in one table. The table name comes from
// configuration, so it is always identifier-quoted.
type CustomerRepository struct {
	db    *pgxpool.Pool
	table string
}

func NewCustomerRepository(db *DB, table string) *CustomerRepository {
	return &CustomerRepository{db: db.Pool(), table: pq.QuoteIdentifier(table)}
}

const customerColumns = `id, phone_number, registration_state, is_registered,
	full_name, location, account_id, credits, revision, created_at, updated_at`

// EnsureSchema creates the customers table and its phone index.
func (r *CustomerRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id                 TEXT PRIMARY KEY,
			phone_number       TEXT NOT NULL UNIQUE,
			registration_state TEXT NOT NULL DEFAULT 'new',
			is_registered      BOOLEAN NOT NULL DEFAULT FALSE,
			full_name          TEXT,
			location           TEXT,
			account_id         TEXT,
			credits            INTEGER NOT NULL DEFAULT 0,
			revision           BIGINT NOT NULL DEFAULT 1,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, r.table)

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create customers table: %w", err)
	}
	return nil
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var c customer.Customer
	var state string

	err := row.Scan(
		&c.ID, &c.PhoneNumber, &state, &c.IsRegistered,
		&c.FullName, &c.Location, &c.AccountID, &c.Credits, &c.Revision,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.RegistrationState = customer.ParseRegistrationState(state)
	return &c, nil
}

// FindByPhone retrieves a customer by exact phone number.
func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE phone_number = $1`, customerColumns, r.table)

	c, err := scanCustomer(r.db.QueryRow(ctx, query, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return c, nil
}

// Create inserts a customer with registration defaults. If another request
// created the same phone number first, that row is returned instead.
func (r *CustomerRepository) Create(ctx context.Context, phone string) (*customer.Customer, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, phone_number, registration_state, is_registered, credits)
		VALUES ($1, $2, $3, FALSE, 0)
		ON CONFLICT (phone_number) DO NOTHING
		RETURNING %s
	`, r.table, customerColumns)

	c, err := scanCustomer(r.db.QueryRow(ctx, query, ulid.Make().String(), phone, string(customer.StateNew)))
	if errors.Is(err, pgx.ErrNoRows) {
		return r.FindByPhone(ctx, phone)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return c, nil
}

// Update applies the set fields of patch and bumps the revision.
func (r *CustomerRepository) Update(ctx context.Context, id string, patch *customer.Patch) (*customer.Customer, error) {
	if patch.IsEmpty() {
		return nil, xerrors.ErrInvalidInput
	}

	query, args := r.buildUpdate(id, patch)

	c, err := scanCustomer(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update customer %s: %w", id, err)
	}
	return c, nil
}

// updateColumns is the order SET clauses are generated in.
var updateColumns = []string{"registration_state", "full_name", "location", "account_id", "is_registered"}

func (r *CustomerRepository) buildUpdate(id string, patch *customer.Patch) (string, []interface{}) {
	fields := patch.Fields()

	sets := make([]string, 0, len(fields)+2)
	args := make([]interface{}, 0, len(fields)+1)
	for _, col := range updateColumns {
		v, ok := fields[col]
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	sets = append(sets, "revision = revision + 1", "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d RETURNING %s`,
		r.table, strings.Join(sets, ", "), len(args), customerColumns)
	return query, args
}

// ListCollections lists the tables visible in the current schema.
func (r *CustomerRepository) ListCollections(ctx context.Context) (*diagnostics.CollectionSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema()
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	summary := &diagnostics.CollectionSummary{Names: []string{}}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		summary.Names = append(summary.Names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	summary.Total = len(summary.Names)
	return summary, nil
}
