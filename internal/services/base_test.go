package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/internal/db/testutil"
	"crm/internal/models"
)

func TestListFiltersByColumn(t *testing.T) {
	dbConn := testutil.MustOpenTestDB(t)
	svc := NewBaseService(dbConn, models.Contact{})
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &models.Contact{FirstName: "Ada", LastName: "Lovelace"}))
	require.NoError(t, svc.Create(ctx, &models.Contact{FirstName: "Grace", LastName: "Hopper"}))

	contacts, total, err := svc.List(ctx, 1, 25, map[string]interface{}{"first_name": "Ada"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Lovelace", contacts[0].LastName)
}

func TestListIgnoresUnknownFilterKeys(t *testing.T) {
	dbConn := testutil.MustOpenTestDB(t)
	svc := NewBaseService(dbConn, models.Contact{})
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &models.Contact{FirstName: "Ada", LastName: "Lovelace"}))
	require.NoError(t, svc.Create(ctx, &models.Contact{FirstName: "Grace", LastName: "Hopper"}))

	// Keys that are not columns of the model never reach the query, so a
	// hostile key cannot smuggle SQL through the filter map.
	contacts, total, err := svc.List(ctx, 1, 25, map[string]interface{}{
		"first_name) OR 1=1 --": "x",
		"no_such_column":        "x",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, contacts, 2)
}
