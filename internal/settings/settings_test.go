package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, "today", d.DefaultView)
	assert.Equal(t, "system", d.Theme)
	assert.Equal(t, 1, d.StartOfWeek, "weeks start on Monday unless the user says otherwise")
}
