package tools

import (
	"testing"

	"token-sweeper-sol/internal/consts"

	"github.com/stretchr/testify/assert"
)

func TestIsSPLToken(t *testing.T) {
	assert.True(t, IsSPLToken(consts.TokenProgramStr))
	assert.True(t, IsSPLToken(consts.TokenProgram2022Str))

	assert.False(t, IsSPLToken(consts.SystemProgramStr))
	assert.False(t, IsSPLToken(""))
}
