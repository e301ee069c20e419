package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"regexp"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

// FileDigest streams a file through SHA-256 and returns the lowercase hex
// digest. The file is never buffered whole in memory.
func FileDigest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	return ReaderDigest(file)
}

// ReaderDigest consumes r and returns the lowercase hex SHA-256 digest of
// its bytes.
func ReaderDigest(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsDigest reports whether s looks like a lowercase hex SHA-256 digest.
func IsDigest(s string) bool {
	return hexDigest.MatchString(s)
}
