package file

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// userStorageIDLength is the number of hex characters kept from the uid digest.
const userStorageIDLength = 32

const emptyNameFragment = "upload"

// UserStorageID derives the per-user key prefix. The mapping is stable and
// cannot be inverted to recover the uid.
func UserStorageID(uid string) string {
	sum := sha256.Sum256([]byte(uid))
	return hex.EncodeToString(sum[:])[:userStorageIDLength]
}

// SanitizeName keeps only the last path segment of a client supplied file name
// (either separator) and replaces every character outside [A-Za-z0-9._-] with '_'.
func SanitizeName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isAllowedNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isAllowedNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '-', r == '_':
		return true
	}
	return false
}

// ObjectKey composes <userStorageID>/<token>-<sanitized name>.
func ObjectKey(userStorageID, token, fileName string) string {
	name := SanitizeName(fileName)
	if name == "" {
		name = emptyNameFragment
	}
	return userStorageID + "/" + token + "-" + name
}
