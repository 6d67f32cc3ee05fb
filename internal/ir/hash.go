package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainState is the domain prefix for store state digests.
// The version suffix allows the digest layout to change later.
const DomainState = "notestore/state/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// StateDigest fingerprints the full contents of a store, in list order.
// Two stores holding the same entities in the same order have the same digest.
func StateDigest(notes []Note, events []Event) (string, error) {
	noteList := make([]any, len(notes))
	for i, n := range notes {
		noteList[i] = n.ToMap()
	}
	eventList := make([]any, len(events))
	for i, e := range events {
		eventList[i] = e.ToMap()
	}

	canonical, err := MarshalCanonical(map[string]any{
		"notes":  noteList,
		"events": eventList,
	})
	if err != nil {
		return "", fmt.Errorf("StateDigest: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainState, canonical), nil
}
