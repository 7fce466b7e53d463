package repositories

import (
	"context"

	"pointeuse/internal/models"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	ListByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID, limit int) ([]*models.Document, error)
}

type documentRepo struct {
	db DBTX
}

func NewDocumentRepo(db DBTX) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) ListByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID, limit int) ([]*models.Document, error) {
	query := `
		SELECT id, tenant_id, employee_id, title, object_key, created_at
		FROM documents
		WHERE tenant_id = $1 AND employee_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, tenantID, employeeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*models.Document
	for rows.Next() {
		d := &models.Document{}
		if err := rows.Scan(&d.ID, &d.TenantID, &d.EmployeeID, &d.Title, &d.ObjectKey, &d.CreatedAt); err != nil {
			return nil, err
		}
		documents = append(documents, d)
	}
	return documents, rows.Err()
}
