package idtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"

	apperrors "lead-system/pkg/errors"
)

// Codec turns internal numeric record ids into opaque external tokens.
// The token is the id plus a truncated keyed hash, base32-encoded, so the
// numeric id is never exposed in a form a caller can enumerate or tamper with.
type Codec struct {
	key []byte
}

const macLen = 6

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

func NewCodec(key string) *Codec {
	return &Codec{key: []byte(key)}
}

func (c *Codec) mac(payload []byte) []byte {
	h := hmac.New(sha256.New, c.key)
	h.Write(payload)
	return h.Sum(nil)[:macLen]
}

func (c *Codec) Encode(id uint64) string {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, id)
	return encoding.EncodeToString(append(payload, c.mac(payload)...))
}

func (c *Codec) Decode(token string) (uint64, error) {
	raw, err := encoding.DecodeString(token)
	if err != nil || len(raw) != 8+macLen {
		return 0, apperrors.ErrInvalidRecordToken
	}
	payload, mac := raw[:8], raw[8:]
	if !hmac.Equal(mac, c.mac(payload)) {
		return 0, apperrors.ErrInvalidRecordToken
	}
	return binary.BigEndian.Uint64(payload), nil
}
