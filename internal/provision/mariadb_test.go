package provision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseBootstrapStep_requiresCredentials(t *testing.T) {
	t.Parallel()

	st, _ := testState(t)
	st.Creds = nil

	_, err := DatabaseBootstrapStep{}.Needed(context.Background(), st)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials not loaded")
}
