package catalogsrv

import (
	"context"
	"strings"

	"github.com/Abraxas-365/hojavida/pkg/errx"
	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/Abraxas-365/hojavida/recruitment/catalog"
)

type Service struct {
	repo catalog.Repository
}

func NewService(repo catalog.Repository) *Service {
	return &Service{repo: repo}
}

// List returns one catalog in its published shape
func (s *Service) List(ctx context.Context, kind catalog.Kind, department string) ([]map[string]string, error) {
	if !kind.IsValid() {
		return nil, catalog.ErrUnknownKind().WithDetail("kind", kind)
	}

	q := catalog.Query{Kind: kind}
	if kind.NeedsDepartment() {
		q.Department = strings.TrimSpace(department)
		if q.Department == "" {
			return nil, catalog.ErrDepartmentRequired()
		}
	}

	values, err := s.repo.List(ctx, q)
	if err != nil {
		if _, ok := errx.As(err); ok {
			return nil, err
		}
		logx.Errorf("Error loading catalog %s: %v", kind, err)
		return nil, catalog.ErrLoadFailed(err).WithDetail("kind", kind)
	}
	return catalog.Entries(kind, values), nil
}
