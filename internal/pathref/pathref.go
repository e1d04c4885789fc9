// Package pathref encodes filesystem paths as file:/// references for
// descriptor and history files, and provides the normalized key used for
// duplicate detection.
package pathref

import (
	"net/url"
	"strings"
)

// Scheme prefixes every encoded path reference.
const Scheme = "file:///"

// Encode percent-encodes an absolute filesystem path and prefixes the
// file scheme marker. Separators are carried through slash-normalized so
// encoded references compare the same across platforms.
func Encode(path string) string {
	segments := strings.Split(strings.ReplaceAll(path, "\\", "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return Scheme + strings.Join(segments, "/")
}

// Decode is the inverse of Encode. Lines without the scheme marker are
// treated as already-decoded local paths and returned as-is, which lets
// plain-text history logs share the same reader.
func Decode(ref string) string {
	if !strings.HasPrefix(ref, Scheme) {
		return ref
	}
	raw := strings.TrimPrefix(ref, Scheme)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// NormalizeForCompare produces the equality key for a path or encoded
// reference: decoded, backslashes folded to forward slashes, lower-cased.
// The key is only ever used for membership tests, never for filesystem
// access or display.
func NormalizeForCompare(path string) string {
	return strings.ToLower(strings.ReplaceAll(Decode(path), "\\", "/"))
}

// Equal reports whether two paths refer to the same item under the
// normalized-key rules.
func Equal(a, b string) bool {
	return NormalizeForCompare(a) == NormalizeForCompare(b)
}
