// Package codec encodes the compact action payloads attached to moderator
// inline buttons. The wire shape is JSON {operation, document}; the document
// id travels as base64url-encoded raw UUID bytes because Telegram caps
// callback data at 64 bytes and a 36-char UUID string would not fit.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"photopost/internal/core/domain"
)

// MaxPayloadSize is the transport's limit on callback data, in bytes.
const MaxPayloadSize = 64

// ErrDecode marks a malformed or unparseable payload. Callers must treat it
// as a no-op (log and ignore), never as fatal.
var ErrDecode = errors.New("malformed callback payload")

type wirePayload struct {
	Operation string `json:"operation"`
	Document  string `json:"document"`
}

// Encode packs an operation tag and a target document id into a payload
// string that fits the transport limit.
func Encode(op domain.Operation, document uuid.UUID) (string, error) {
	if !op.Valid() {
		return "", fmt.Errorf("cannot encode unknown operation %q", op)
	}

	raw, err := json.Marshal(wirePayload{
		Operation: string(op),
		Document:  base64.RawURLEncoding.EncodeToString(document[:]),
	})
	if err != nil {
		return "", err
	}
	if len(raw) > MaxPayloadSize {
		return "", fmt.Errorf("callback payload is %d bytes, limit is %d", len(raw), MaxPayloadSize)
	}

	return string(raw), nil
}

// Decode unpacks a payload produced by Encode. Any malformed input yields
// ErrDecode.
func Decode(data string) (domain.Operation, uuid.UUID, error) {
	var w wirePayload
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	op := domain.Operation(w.Operation)
	if !op.Valid() {
		return "", uuid.Nil, fmt.Errorf("%w: unknown operation %q", ErrDecode, w.Operation)
	}

	raw, err := base64.RawURLEncoding.DecodeString(w.Document)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: bad document id: %v", ErrDecode, err)
	}
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("%w: bad document id: %v", ErrDecode, err)
	}

	return op, id, nil
}
