package membership

import "context"

type Repository interface {
	Create(ctx context.Context, req CreateMembershipRequest) (*Membership, error)
	GetByID(ctx context.Context, id int) (*Membership, error)
	Update(ctx context.Context, m *Membership) (*Membership, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter ListFilter) ([]Membership, error)
	HasSubscriptions(ctx context.Context, id int) (bool, error)
	Stats(ctx context.Context) (*Stats, error)
}
