package cataloginfra

import (
	"context"
	"fmt"

	"github.com/Abraxas-365/hojavida/recruitment/catalog"
	"github.com/jmoiron/sqlx"
)

var listQueries = map[catalog.Kind]string{
	catalog.KindIdentificationType: `SELECT descripcion FROM config_tipo_identificacion ORDER BY descripcion`,
	catalog.KindDepartment:         `SELECT departamento FROM config_departamentos WHERE pais = $1 ORDER BY departamento`,
	catalog.KindCity:               `SELECT ciudad FROM config_ciudades WHERE departamento = $1 AND pais = $2 ORDER BY ciudad`,
	catalog.KindEPS:                `SELECT eps FROM config_eps ORDER BY eps`,
	catalog.KindPension:            `SELECT fondo FROM config_pension ORDER BY fondo`,
}

type PostgresCatalogRepository struct {
	db *sqlx.DB
}

func NewPostgresCatalogRepository(db *sqlx.DB) catalog.Repository {
	return &PostgresCatalogRepository{db: db}
}

func (r *PostgresCatalogRepository) List(ctx context.Context, q catalog.Query) ([]string, error) {
	query, ok := listQueries[q.Kind]
	if !ok {
		return nil, catalog.ErrUnknownKind().WithDetail("kind", q.Kind)
	}

	var args []any
	switch q.Kind {
	case catalog.KindDepartment:
		args = []any{catalog.Country}
	case catalog.KindCity:
		args = []any{q.Department, catalog.Country}
	}

	values := []string{}
	if err := r.db.SelectContext(ctx, &values, query, args...); err != nil {
		return nil, fmt.Errorf("list catalog %s: %w", q.Kind, err)
	}
	return values, nil
}
