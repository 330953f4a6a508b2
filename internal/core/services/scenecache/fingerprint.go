package scenecache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Params are all the inputs that determine a cached scene's validity. Two
// requests with any differing field must produce different fingerprints.
type Params struct {
	Host    string            // controller host
	Site    string            // controller site/segment
	Variant string            // "raw" or "enhanced"
	Options map[string]string // free-form request options
}

// Fingerprint hashes a canonical encoding of the params. Option keys are
// sorted so the fingerprint is independent of map iteration order, and every
// field is length-prefixed so concatenation ambiguity cannot collide two
// distinct inputs.
func Fingerprint(p Params) string {
	var b strings.Builder
	writeField(&b, "host", p.Host)
	writeField(&b, "site", p.Site)
	writeField(&b, "variant", p.Variant)

	keys := make([]string, 0, len(p.Options))
	for k := range p.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeField(&b, "opt:"+k, p.Options[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func writeField(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "%d:%s=%d:%s;", len(key), key, len(value), value)
}
