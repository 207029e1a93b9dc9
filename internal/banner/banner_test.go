package banner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetString(t *testing.T) {
	out := GetString()

	assert.Contains(t, out, "performance harness for the MT103 transfer service")
	assert.Contains(t, out, "|_|  |_| |_|")
}
