package remote

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/mahudhurio/core/subject"
)

type subjectRepository struct {
	c *Client
}

func NewSubjectRepository(c *Client) subject.Repository {
	return &subjectRepository{c: c}
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context) ([]subject.Subject, error) {
	var subjects []subject.Subject
	err := repo.c.do(ctx, call{op: "listing subjects", method: rest.Get, path: "/subjects", out: &subjects})
	return subjects, err
}

func (repo *subjectRepository) GetSubject(ctx context.Context, id int) (subject.Subject, error) {
	var sub subject.Subject
	err := repo.c.do(ctx, call{op: "getting subject", method: rest.Get, path: "/subjects/" + strconv.Itoa(id), out: &sub})
	if isNotFound(err) {
		return subject.Subject{}, errors.Wrap(subject.ErrNotFound, err.Error())
	}
	return sub, err
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, ns subject.NewSubject) (subject.Subject, error) {
	var sub subject.Subject
	err := repo.c.do(ctx, call{op: "creating subject", method: rest.Post, path: "/subjects", in: ns, out: &sub})
	return sub, err
}

func (repo *subjectRepository) DeleteSubject(ctx context.Context, id int) error {
	err := repo.c.do(ctx, call{op: "deleting subject", method: rest.Delete, path: "/subjects/" + strconv.Itoa(id)})
	if isNotFound(err) {
		return errors.Wrap(subject.ErrNotFound, err.Error())
	}
	return err
}
