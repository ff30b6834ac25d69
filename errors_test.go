package heracles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessageIncludesDetails(t *testing.T) {
	err := newError(ENOMATCH, "/files/etc/hosts/bogus")
	assert.Contains(t, err.Error(), "no matching node")
	assert.Contains(t, err.Error(), "/files/etc/hosts/bogus")
}

func TestCodeStringUnknownFallsBack(t *testing.T) {
	assert.Equal(t, "EUNKNOWN", Code(999).String())
}
