package subject

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when the backend has no subject with the requested id.
var ErrNotFound = errors.New("subject not found")

type (
	// Repository is implemented by the storage talking to the attendance backend.
	Repository interface {
		QuerySubjects(ctx context.Context) ([]Subject, error)
		GetSubject(ctx context.Context, id int) (Subject, error)
		CreateSubject(ctx context.Context, ns NewSubject) (Subject, error)
		DeleteSubject(ctx context.Context, id int) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) QueryAll(ctx context.Context) ([]Subject, error) {
	subjects, err := svc.repo.QuerySubjects(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []Subject{}
	}
	return subjects, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Subject, error) {
	sub, err := svc.repo.GetSubject(ctx, id)
	return sub, errors.Wrap(err, "getting subject")
}

// Create validates ns first: a blank name never reaches the backend.
// The returned Subject is the backend's record, with its id and creation time.
func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Subject{}, err
	}
	sub, err := svc.repo.CreateSubject(ctx, ns)
	if err != nil {
		return Subject{}, errors.Wrap(err, "creating subject")
	}
	return sub, nil
}

// Delete removes the subject; the backend cascades to its attendance records.
func (svc *Service) Delete(ctx context.Context, id int) error {
	return errors.Wrap(svc.repo.DeleteSubject(ctx, id), "deleting subject")
}
