package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeUpgrade(t *testing.T) {
	assert.Equal(t, "initial locker schema", describeUpgrade(""))
	assert.Equal(t, "derive transaction released flag", describeUpgrade("1.0.0"))
	assert.Equal(t, "schema refresh from 0.9.0", describeUpgrade("0.9.0"))
}
