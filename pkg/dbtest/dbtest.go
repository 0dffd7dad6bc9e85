package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aquasecurity/maven-repo-builder/pkg/db"
	"github.com/aquasecurity/maven-repo-builder/pkg/index"
)

func InitDB(t *testing.T, idx *index.Index) db.DB {
	tmpDir := t.TempDir()
	dbc, err := db.New(tmpDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbc.Close() })

	err = dbc.Init()
	require.NoError(t, err)

	if idx != nil {
		err = dbc.InsertIndex(idx)
		require.NoError(t, err)
	}
	return dbc
}
