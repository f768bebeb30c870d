package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveExplicitPreference(t *testing.T) {
	assert.Equal(t, "dark", Resolve("dark").Name)
	assert.Equal(t, "light", Resolve("light").Name)
}

func TestResolveAutoReturnsKnownPalette(t *testing.T) {
	p := Resolve("auto")
	assert.Contains(t, []string{"dark", "light"}, p.Name)
}

func TestTmuxStyleArgsTargetSession(t *testing.T) {
	args := Dark.TmuxStyleArgs("writing")
	assert.Len(t, args, 3)
	for _, a := range args {
		assert.Equal(t, "set-option", a[0])
		assert.Equal(t, "writing", a[2])
	}
	assert.Equal(t, "pane-border-style", args[0][3])
	assert.Equal(t, Dark.PaneBorder, args[0][4])
}
