package catalog

import "context"

// Repository loads the values of one catalog, sorted
type Repository interface {
	List(ctx context.Context, q Query) ([]string, error)
}
