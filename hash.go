package gotara

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// variantLen is the number of fingerprint hex digits kept in a cache key.
const variantLen = 16

// HashText computes the SHA-256 hash of text. Whitespace is significant:
// translations keep it, so two texts that differ only in spacing get
// different hashes.
func HashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// CacheVariant names the configuration a translation was produced with: the
// leading digits of the rule table fingerprint, suffixed with "w" when width
// folding is on. Translators with different tables never share entries.
func CacheVariant(fingerprint string, foldWidth bool) string {
	if len(fingerprint) > variantLen {
		fingerprint = fingerprint[:variantLen]
	}
	if foldWidth {
		return fingerprint + "w"
	}
	return fingerprint
}

// CacheKey generates a cache key from a text hash, a direction and a
// CacheVariant.
func CacheKey(hash, direction, variant string) string {
	return hash + ":" + direction + ":" + variant
}

// KeyParts are the components of a key built by CacheKey.
type KeyParts struct {
	Hash      string
	Direction TranslationDirection
	Variant   string
}

// ParseCacheKey splits a key built by CacheKey. ok is false unless the hash
// is a hex SHA-256 digest, the direction is concrete and the variant is a
// well-formed CacheVariant.
func ParseCacheKey(key string) (parts KeyParts, ok bool) {
	hash, rest, found := strings.Cut(key, ":")
	if !found || len(hash) != 2*sha256.Size || !isHex(hash) {
		return KeyParts{}, false
	}
	d, variant, found := strings.Cut(rest, ":")
	if !found || !validVariant(variant) {
		return KeyParts{}, false
	}
	switch dir := TranslationDirection(d); dir {
	case DirectionEnglishToTaralians, DirectionTaraliansToEnglish:
		return KeyParts{Hash: hash, Direction: dir, Variant: variant}, true
	}
	return KeyParts{}, false
}

func validVariant(v string) bool {
	v = strings.TrimSuffix(v, "w")
	return len(v) == variantLen && isHex(v)
}

func isHex(s string) bool {
	_, err := hex.DecodeString(s)
	return err == nil
}
