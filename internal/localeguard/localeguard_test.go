package localeguard

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnterExitPinsAndRestoresLocale(t *testing.T) {
	os.Setenv("LC_ALL", "en_US.UTF-8")
	defer os.Unsetenv("LC_ALL")

	var g Guard
	g.Enter()
	assert.Equal(t, "C", os.Getenv("LC_ALL"))
	g.Enter() // nested call, e.g. a lens invoking Match
	assert.Equal(t, "C", os.Getenv("LC_ALL"))
	g.Exit()
	assert.Equal(t, "C", os.Getenv("LC_ALL"), "still pinned until the outermost Exit")
	g.Exit()
	assert.Equal(t, "en_US.UTF-8", os.Getenv("LC_ALL"))
	assert.Equal(t, 0, g.Depth())
}
