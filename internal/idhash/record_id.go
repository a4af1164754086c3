package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"tradeproof/internal/domain"
)

// ComputeImageHash computes the SHA-256 content hash of raw image bytes.
// Used for duplicate detection within a batch.
// Returns hex-encoded hash (64 characters).
func ComputeImageHash(imageBytes []byte) string {
	hash := sha256.Sum256(imageBytes)
	return hex.EncodeToString(hash[:])
}

// ComputeRecordID computes a deterministic record_id using SHA256.
// Formula: SHA256(kind|image_hash)
// The source path is deliberately excluded so the same screenshot dropped
// into a differently named file produces the same record identity.
// Returns hex-encoded hash (64 characters).
func ComputeRecordID(kind domain.RecordKind, imageHash string) string {
	data := fmt.Sprintf("%s|%s", string(kind), imageHash)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(signal_record_id|result_record_id)
// resultRecordID is empty for an unmatched signal promoted to a trade.
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(signalRecordID, resultRecordID string) string {
	data := fmt.Sprintf("%s|%s", signalRecordID, resultRecordID)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
