package repositories

import (
	"context"

	"pointeuse/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db DBTX
}

func NewTenantRepo(db DBTX) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = `id, name, industry, country, plan, timezone, config, vocabulary, work_start_time, max_work_hours, created_at, updated_at`

func tenantDest(t *models.Tenant) []any {
	return []any{&t.ID, &t.Name, &t.Industry, &t.Country, &t.Plan, &t.Timezone, &t.Config, &t.Vocabulary, &t.WorkStartTime, &t.MaxWorkHours, &t.CreatedAt, &t.UpdatedAt}
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE id = $1
	`
	if err := conn(ctx, r.db).QueryRow(ctx, query, id).Scan(tenantDest(tenant)...); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *tenantRepo) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectTenants(rows)
}

func collectTenants(rows pgx.Rows) ([]*models.Tenant, error) {
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		if err := rows.Scan(tenantDest(tenant)...); err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}
