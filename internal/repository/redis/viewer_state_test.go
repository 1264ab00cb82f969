package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "viewer:s1:preferences", preferencesKey("s1"))
	assert.Equal(t, "viewer:s1:playback_c9", playbackKey("s1", "c9"))
}
