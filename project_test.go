package fswatch

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirProjectLister(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, d := range []string{"/projects/app", "/projects/lib/src", "/projects/.che"} {
		require.NoError(t, fs.MkdirAll(d, 0o755))
	}
	require.NoError(t, afero.WriteFile(fs, "/projects/README.md", []byte("hi"), 0o644))

	projects, err := NewDirProjectLister(fs, "/projects").ListProjects()
	require.NoError(t, err)
	assert.ElementsMatch(t, []Project{
		{Name: "app", BaseFolder: "/projects/app"},
		{Name: "lib", BaseFolder: "/projects/lib"},
	}, projects)
}

func TestDirProjectListerMissingRoot(t *testing.T) {
	_, err := NewDirProjectLister(afero.NewMemMapFs(), "/nowhere").ListProjects()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrListProjects))
}
