package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullVersionUnstampedBuild(t *testing.T) {
	assert.Equal(t, "dev (commit: none, built: unknown)", GetFullVersion())
	assert.Equal(t, "dev", GetVersion())
	assert.Equal(t, "none", GetCommit())
}
