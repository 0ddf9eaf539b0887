package ndef

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextMessage(t *testing.T) {
	t.Run("encodes a short well-known text record", func(t *testing.T) {
		msg, err := TextMessage("en", "alice@sat.fam")
		require.NoError(t, err)

		// MB|ME|SR|TNF=well-known, type length 1, payload length, 'T'.
		assert.Equal(t, byte(0xD1), msg[0])
		assert.Equal(t, byte(1), msg[1])
		assert.Equal(t, byte(1+2+len("alice@sat.fam")), msg[2])
		assert.Equal(t, byte('T'), msg[3])
		assert.Equal(t, byte(2), msg[4])
		assert.Equal(t, "en", string(msg[5:7]))
		assert.Equal(t, "alice@sat.fam", string(msg[7:]))
	})

	t.Run("defaults the language to en", func(t *testing.T) {
		msg, err := TextMessage("", "x")
		require.NoError(t, err)
		assert.Equal(t, "en", string(msg[5:7]))
	})

	t.Run("rejects payloads past the short record cap", func(t *testing.T) {
		_, err := TextMessage("en", strings.Repeat("a", 300))
		assert.Error(t, err)
	})
}
