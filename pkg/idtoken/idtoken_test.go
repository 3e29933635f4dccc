package idtoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "lead-system/pkg/errors"
)

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec("test-key")

	for _, id := range []uint64{1, 42, 99999, 1<<40 + 7} {
		token := codec.Encode(id)
		decoded, err := codec.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}
}

func TestCodec_RejectsTamperedToken(t *testing.T) {
	codec := NewCodec("test-key")
	token := codec.Encode(42)

	tampered := "A" + token[1:]
	if tampered == token {
		tampered = "B" + token[1:]
	}
	_, err := codec.Decode(tampered)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRecordToken)
}

func TestCodec_RejectsForeignKey(t *testing.T) {
	token := NewCodec("key-one").Encode(42)
	_, err := NewCodec("key-two").Decode(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRecordToken)
}

func TestCodec_RejectsGarbage(t *testing.T) {
	codec := NewCodec("test-key")
	for _, tok := range []string{"", "42", "!!!!", "AAAA"} {
		_, err := codec.Decode(tok)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRecordToken, tok)
	}
}
