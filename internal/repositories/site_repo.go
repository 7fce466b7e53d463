package repositories

import (
	"context"

	"pointeuse/internal/models"

	"github.com/google/uuid"
)

type SiteRepository interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Site, error)
}

type siteRepo struct {
	db DBTX
}

func NewSiteRepo(db DBTX) SiteRepository {
	return &siteRepo{db: db}
}

func (r *siteRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Site, error) {
	site := &models.Site{}
	query := `
		SELECT id, tenant_id, name, latitude, longitude, radius_meters, created_at
		FROM sites
		WHERE tenant_id = $1 AND id = $2
	`
	err := conn(ctx, r.db).QueryRow(ctx, query, tenantID, id).Scan(&site.ID, &site.TenantID, &site.Name, &site.Latitude, &site.Longitude, &site.RadiusMeters, &site.CreatedAt)
	if err != nil {
		return nil, err
	}
	return site, nil
}
