package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// keyLength is the truncated hex length of derived keys. 16 hex chars
// (64 bits) keeps filenames short; the residual collision probability is
// accepted as a tradeoff for key brevity.
const keyLength = 16

// DeriveKey turns a request identity (base identifier plus parameter set)
// into a stable short cache key.
//
// Params are serialized as key=value pairs sorted lexicographically by
// key and joined with "&", so insertion order never changes the result.
// The string "{identifier}?{params}" is hashed with SHA-256 and truncated
// to 16 hex characters.
//
// Values containing "&" or "=" are not escaped; such values can alias
// another parameter set. Known limitation.
func DeriveKey(identifier string, params map[string]string) string {
	var sb strings.Builder
	sb.WriteString(identifier)
	sb.WriteByte('?')

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for i, k := range keys {
			if i > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(params[k])
		}
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])[:keyLength]
}
