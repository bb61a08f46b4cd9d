// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scan

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// digests computes the MD5 and SHA-256 of the file in one pass.
func digests(path string) (md5Hex, sha256Hex string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	m := md5.New()
	s := sha256.New()
	if _, err := io.Copy(io.MultiWriter(m, s), f); err != nil {
		return "", "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(m.Sum(nil)), hex.EncodeToString(s.Sum(nil)), nil
}

// hashStage computes the digests and records them on the target.
func hashStage(c *Context) (string, error) {
	md5Hex, sha256Hex, err := digests(c.PDF)
	if err != nil {
		return "", err
	}
	c.Rec.MD5 = md5Hex
	c.Rec.SHA256 = sha256Hex
	return fmt.Sprintf("MD5:     %s\nSHA-256: %s", md5Hex, sha256Hex), nil
}
