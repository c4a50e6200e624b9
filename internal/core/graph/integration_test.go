//go:build integration

package graph

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/persona/internal/config"
	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/driver"
)

func TestExportMemgraph(t *testing.T) {
	_ = godotenv.Load("../../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}
	ctx := context.Background()
	d, err := driver.NewMemgraphDriver(ctx, config.GraphConfig{
		URI:      uri,
		User:     os.Getenv("MEMGRAPH_USER"),
		Password: os.Getenv("MEMGRAPH_PASSWORD"),
	}, nil)
	require.NoError(t, err)
	defer d.Close(ctx)

	exporter := NewExporter(d, nil)
	require.NoError(t, exporter.BuildIndices(ctx))

	p := persona()
	p.UserID = "it-" + uuid.NewString()
	defer func() {
		_, _ = d.ExecuteQuery(ctx, `MATCH (u:User {username: $u}) DETACH DELETE u`, map[string]interface{}{"u": p.UserID})
	}()

	n, err := exporter.Export(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// a second export replaces rather than duplicates the edges
	p.Communities = p.Communities[:1]
	_, err = exporter.Export(ctx, p)
	require.NoError(t, err)

	edges, err := exporter.Communities(ctx, p.UserID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "golang", edges[0].Community)
	assert.Equal(t, int64(4), edges[0].Interactions)
	assert.Equal(t, model.Joy.String(), edges[0].Dominant)
}
