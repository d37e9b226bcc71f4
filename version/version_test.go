package version_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mycophonic/iamfparam/version"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	require.Equal(t, "iamfparam", version.Name())
	require.NotEmpty(t, version.Version())
	require.NotEmpty(t, version.Commit())
	require.NotEmpty(t, version.Date())
}
