package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/docdex"
	main "github.com/fwojciec/docdex/cmd/docdex"
	"github.com/fwojciec/docdex/crawl"
	"github.com/fwojciec/docdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCmd_DryRun(t *testing.T) {
	t.Parallel()

	catalog := &mock.CatalogService{
		FetchAllServicesFn: func(ctx context.Context) ([]docdex.ServiceCategory, error) {
			return []docdex.ServiceCategory{
				{Name: "Compute", Services: []docdex.Service{{Code: "ecs"}}},
			}, nil
		},
		FetchServicePagesFn: func(ctx context.Context, serviceCode string) ([]docdex.DocumentPage, error) {
			return []docdex.DocumentPage{
				{
					ID:      "ecs_overview",
					URL:     "https://docs.example.com/ecs/overview",
					Service: "ecs",
					Level:   1,
					Status:  docdex.PageStatusPending,
				},
				{
					ID:      "ecs_create",
					URL:     "https://docs.example.com/ecs/create",
					Service: "ecs",
					Level:   2,
					Status:  docdex.PageStatusPending,
				},
			}, nil
		},
	}

	stdout := &bytes.Buffer{}
	deps := &main.Dependencies{
		Ctx:      context.Background(),
		Stdout:   stdout,
		Stderr:   &bytes.Buffer{},
		Pipeline: &crawl.Pipeline{Catalog: catalog},
	}

	cmd := &main.IngestCmd{DryRun: true}
	require.NoError(t, cmd.Run(deps))
	assert.Contains(t, stdout.String(), "Dry run: 1 services, 2 pages discovered")
}
