package membership

import (
	"encoding/hex"
	"encoding/json"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a hex BLAKE2b-256 digest of the rule and every field
// of every product in catalog order. Two calls with equal inputs return
// equal strings, and any change to data a preview returns changes the
// digest, so it can key a memoized preview.
func Fingerprint(catalog []Product, conditions TagConditions) string {
	h, _ := blake2b.New256(nil)

	// json.Marshal of a struct is deterministic; errors are impossible for
	// these plain types.
	rule, _ := json.Marshal(conditions)
	h.Write(rule)
	h.Write([]byte{0})

	for _, p := range catalog {
		row, _ := json.Marshal(p)
		h.Write(row)
		h.Write([]byte{0x1e})
	}

	return hex.EncodeToString(h.Sum(nil))
}
