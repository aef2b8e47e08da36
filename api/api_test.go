package api_test

import (
	"context"
	"testing"

	"github.com/aretw0/assist/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperations(t *testing.T) {
	doc, err := api.Load(context.Background())
	require.NoError(t, err)

	ops, err := api.Operations(doc)
	require.NoError(t, err)
	require.Len(t, ops, 6)

	byID := map[string]api.Operation{}
	for _, op := range ops {
		byID[op.ID] = op
	}
	assert.Equal(t, "GET", byID["getAllNgos"].Method)
	assert.Equal(t, "/api/auth/user/login", byID["login"].Path)
	assert.Equal(t, "multipart/form-data", byID["createRequest"].ContentType)
	assert.Equal(t, "application/json", byID["register"].ContentType)
}
