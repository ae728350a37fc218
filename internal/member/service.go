// internal/member/service.go
package member

import (
	"context"
)

// Service defines the interface for the member lifecycle service.
type Service interface {
	Create(ctx context.Context, in CreateInput) (string, error)
	Update(ctx context.Context, id int64, in UpdateInput) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Member, error)
	List(ctx context.Context, name string) ([]Member, error)
	Count(ctx context.Context) (int, error)
}
