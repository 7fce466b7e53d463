package repositories

import (
	"context"
	"errors"
	"time"

	"pointeuse/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	// GetByPhone looks up an active employee by canonical phone, with its tenant attached.
	GetByPhone(ctx context.Context, phone string) (*models.Employee, error)
	ListManagers(ctx context.Context, tenantID uuid.UUID) ([]*models.Employee, error)
	// ListWithoutCheckIn returns active non-manager employees of a tenant with no
	// attendance whose check-in falls in [from, to).
	ListWithoutCheckIn(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*models.Employee, error)

	SetConversation(ctx context.Context, id uuid.UUID, state models.ConversationState, scratch models.Scratch) error
	PatchScratch(ctx context.Context, id uuid.UUID, partial models.Scratch) error
	ClearConversation(ctx context.Context, id uuid.UUID) error
	// TransitionConversation moves from -> to and merges patch into the scratch, only if
	// the current state is still from. It reports whether the row was updated.
	TransitionConversation(ctx context.Context, id uuid.UUID, from, to models.ConversationState, patch models.Scratch) (bool, error)
	// ResetConversation moves from -> to with an empty scratch, only if the state is from.
	ResetConversation(ctx context.Context, id uuid.UUID, from, to models.ConversationState) (bool, error)
	// TakeConversation clears the conversation if it is in state from and returns the
	// scratch it held.
	TakeConversation(ctx context.Context, id uuid.UUID, from models.ConversationState) (models.Scratch, bool, error)
}

type employeeRepo struct {
	db DBTX
}

func NewEmployeeRepo(db DBTX) EmployeeRepository {
	return &employeeRepo{db: db}
}

const employeeColumns = `e.id, e.tenant_id, e.site_id, e.phone, e.name, e.role, COALESCE(e.conversation_state, ''), e.temp_expense_data, e.is_archived, e.created_at, e.updated_at`

func employeeDest(e *models.Employee) []any {
	return []any{&e.ID, &e.TenantID, &e.SiteID, &e.Phone, &e.Name, &e.Role, &e.ConversationState, &e.TempExpenseData, &e.IsArchived, &e.CreatedAt, &e.UpdatedAt}
}

func nullableState(state models.ConversationState) *string {
	if state == models.ConversationIdle {
		return nil
	}
	s := string(state)
	return &s
}

func (r *employeeRepo) Create(ctx context.Context, employee *models.Employee) error {
	query := `
		INSERT INTO employees (id, tenant_id, site_id, phone, name, role, is_archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW(), NOW())
	`
	_, err := conn(ctx, r.db).Exec(ctx, query, employee.ID, employee.TenantID, employee.SiteID, employee.Phone, employee.Name, employee.Role)
	return err
}

func (r *employeeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	employee := &models.Employee{}
	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		WHERE e.id = $1
	`
	if err := conn(ctx, r.db).QueryRow(ctx, query, id).Scan(employeeDest(employee)...); err != nil {
		return nil, err
	}
	return employee, nil
}

func (r *employeeRepo) GetByPhone(ctx context.Context, phone string) (*models.Employee, error) {
	employee := &models.Employee{Tenant: &models.Tenant{}}
	query := `
		SELECT ` + employeeColumns + `, ` + prefixed("t", tenantColumns) + `
		FROM employees e
		JOIN tenants t ON t.id = e.tenant_id
		WHERE e.phone = $1 AND NOT e.is_archived
	`
	dest := append(employeeDest(employee), tenantDest(employee.Tenant)...)
	if err := conn(ctx, r.db).QueryRow(ctx, query, phone).Scan(dest...); err != nil {
		return nil, err
	}
	return employee, nil
}

func (r *employeeRepo) ListManagers(ctx context.Context, tenantID uuid.UUID) ([]*models.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		WHERE e.tenant_id = $1 AND e.role = 'MANAGER' AND NOT e.is_archived
		ORDER BY e.created_at
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	return collectEmployees(rows)
}

func (r *employeeRepo) ListWithoutCheckIn(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]*models.Employee, error) {
	query := `
		SELECT ` + employeeColumns + `
		FROM employees e
		WHERE e.tenant_id = $1 AND e.role <> 'MANAGER' AND NOT e.is_archived
		AND NOT EXISTS (
			SELECT 1 FROM attendances a
			WHERE a.employee_id = e.id AND a.check_in >= $2 AND a.check_in < $3
		)
		ORDER BY e.created_at
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	return collectEmployees(rows)
}

func (r *employeeRepo) SetConversation(ctx context.Context, id uuid.UUID, state models.ConversationState, scratch models.Scratch) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if scratch == nil {
		query := `UPDATE employees SET conversation_state = $2, updated_at = NOW() WHERE id = $1`
		tag, err = conn(ctx, r.db).Exec(ctx, query, id, nullableState(state))
	} else {
		query := `UPDATE employees SET conversation_state = $2, temp_expense_data = $3::jsonb, updated_at = NOW() WHERE id = $1`
		tag, err = conn(ctx, r.db).Exec(ctx, query, id, nullableState(state), scratch)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *employeeRepo) PatchScratch(ctx context.Context, id uuid.UUID, partial models.Scratch) error {
	query := `
		UPDATE employees
		SET temp_expense_data = COALESCE(temp_expense_data, '{}'::jsonb) || $2::jsonb, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id, partial)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *employeeRepo) ClearConversation(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE employees SET conversation_state = NULL, temp_expense_data = NULL, updated_at = NOW() WHERE id = $1`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *employeeRepo) TransitionConversation(ctx context.Context, id uuid.UUID, from, to models.ConversationState, patch models.Scratch) (bool, error) {
	query := `
		UPDATE employees
		SET conversation_state = $3,
			temp_expense_data = COALESCE(temp_expense_data, '{}'::jsonb) || $4::jsonb,
			updated_at = NOW()
		WHERE id = $1 AND conversation_state IS NOT DISTINCT FROM $2
	`
	if patch == nil {
		patch = models.Scratch{}
	}
	tag, err := conn(ctx, r.db).Exec(ctx, query, id, nullableState(from), nullableState(to), patch)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *employeeRepo) ResetConversation(ctx context.Context, id uuid.UUID, from, to models.ConversationState) (bool, error) {
	query := `
		UPDATE employees
		SET conversation_state = $3, temp_expense_data = '{}'::jsonb, updated_at = NOW()
		WHERE id = $1 AND conversation_state IS NOT DISTINCT FROM $2
	`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id, nullableState(from), nullableState(to))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *employeeRepo) TakeConversation(ctx context.Context, id uuid.UUID, from models.ConversationState) (models.Scratch, bool, error) {
	query := `
		WITH prev AS (
			SELECT id, temp_expense_data FROM employees
			WHERE id = $1 AND conversation_state IS NOT DISTINCT FROM $2
			FOR UPDATE
		)
		UPDATE employees e
		SET conversation_state = NULL, temp_expense_data = NULL, updated_at = NOW()
		FROM prev
		WHERE e.id = prev.id
		RETURNING prev.temp_expense_data
	`
	var scratch models.Scratch
	err := conn(ctx, r.db).QueryRow(ctx, query, id, nullableState(from)).Scan(&scratch)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return scratch, true, nil
}

func collectEmployees(rows pgx.Rows) ([]*models.Employee, error) {
	defer rows.Close()

	var employees []*models.Employee
	for rows.Next() {
		employee := &models.Employee{}
		if err := rows.Scan(employeeDest(employee)...); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}
