// Package metriccache provides a file-backed TTL cache for computed metric
// results, keyed by a fingerprint of the metric name and its full parameter
// set. The cache is strictly best-effort: every fault degrades to a miss.
package metriccache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// fingerprintLen is the hex length of a cache key. 64 bits of digest keeps
// filenames short while making accidental collisions implausible at this
// catalog size.
const fingerprintLen = 16

// Fingerprint derives the cache key for a metric invocation. The key is
// independent of parameter order and sensitive to every value, including
// explicit nils: {"season": nil} and an absent season are the same parameter
// set and must fingerprint identically, while {"season": 2023} must not.
func Fingerprint(metric string, params map[string]any) (string, error) {
	keys := make([]string, 0, len(params))

	for k, v := range params {
		if v == nil {
			continue
		}

		keys = append(keys, k)
	}

	sort.Strings(keys)

	var b strings.Builder

	b.WriteString(metric)

	for _, k := range keys {
		v, err := json.Marshal(params[k])
		if err != nil {
			return "", fmt.Errorf("fingerprint metric %q: parameter %q is not serializable: %w", metric, k, err)
		}

		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.Write(v)
	}

	sum := sha256.Sum256([]byte(b.String()))

	return hex.EncodeToString(sum[:])[:fingerprintLen], nil
}
