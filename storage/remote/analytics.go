package remote

import (
	"context"

	"github.com/sendgrid/rest"

	"github.com/trezcool/mahudhurio/core/analytics"
)

type analyticsRepository struct {
	c *Client
}

func NewAnalyticsRepository(c *Client) analytics.Repository {
	return &analyticsRepository{c: c}
}

func (repo *analyticsRepository) GetOverall(ctx context.Context) (analytics.Overall, error) {
	var o analytics.Overall
	err := repo.c.do(ctx, call{op: "getting analytics", method: rest.Get, path: "/analytics", out: &o})
	return o, err
}
