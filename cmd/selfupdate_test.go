package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Real update paths need network access and a published release, so the
// unit tests only cover the guard rails around them.
func TestSelfUpdateRefusesDevBuilds(t *testing.T) {
	for _, version := range []string{"dev", ""} {
		t.Run("version "+version, func(t *testing.T) {
			previous := rootCmd.Version
			t.Cleanup(func() { rootCmd.Version = previous })
			rootCmd.Version = version

			err := newSelfUpdateCmd().Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "cannot self-update a development version")
			assert.Contains(t, err.Error(), `"`+version+`"`, "error should name the refused version")
		})
	}
}

func TestSelfUpdateCommandMetadata(t *testing.T) {
	cmd := newSelfUpdateCmd()

	assert.Equal(t, "self-update", cmd.Use)
	assert.Contains(t, cmd.Short, "latest version")
	assert.Contains(t, cmd.Long, githubRepoSlug, "help text should name the release repository")
	assert.NotNil(t, cmd.RunE)
}
