package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, "stepup", root.Name)

	for _, name := range []string{"login", "whoami", "roles", "set-default-role", "list", "workflow"} {
		assert.Contains(t, root.Subcommands, name)
	}
}

func TestParseFields(t *testing.T) {
	fields, err := parseFields(`{"Title":"Ann","Score":7}`)
	require.NoError(t, err)
	assert.Equal(t, "Ann", fields["Title"])
	assert.Equal(t, float64(7), fields["Score"])

	_, err = parseFields("")
	assert.Error(t, err)

	_, err = parseFields("[1,2]")
	assert.Error(t, err)
}
