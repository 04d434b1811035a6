package util

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CanonicalJSON 规范化JSON编码
// Encodes v, decodes it back into plain interface{} values and re-encodes, so
// every object is emitted with sorted keys. The chain's hashes are computed
// over this form and must be reproducible byte-for-byte across restarts.
func CanonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical json: %w", err)
	}

	var plain interface{}
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, fmt.Errorf("canonical json: %w", err)
	}

	return json.Marshal(plain)
}

// SHA256Hex 计算SHA-256哈希
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes the canonical JSON encoding of v.
func HashJSON(v interface{}) (string, error) {
	data, err := CanonicalJSON(v)
	if err != nil {
		return "", err
	}
	return SHA256Hex(data), nil
}
