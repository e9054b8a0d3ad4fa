package analytics

import (
	"context"

	"github.com/pkg/errors"
)

type (
	Repository interface {
		GetOverall(ctx context.Context) (Overall, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Overall fetches the backend's aggregate. The subject order is kept as received.
func (svc *Service) Overall(ctx context.Context) (Overall, error) {
	o, err := svc.repo.GetOverall(ctx)
	if err != nil {
		return Overall{}, errors.Wrap(err, "getting analytics")
	}
	if o.SubjectStats == nil {
		o.SubjectStats = []SubjectStats{}
	}
	return o, nil
}
