package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedReaction(t *testing.T) {
	for _, r := range AllowedReactions {
		assert.True(t, IsAllowedReaction(r), r)
	}
	assert.False(t, IsAllowedReaction("🙈"))
	assert.False(t, IsAllowedReaction("thumbsup"))
	assert.False(t, IsAllowedReaction(""))
}
