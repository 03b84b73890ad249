// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

const testHashKey = "test-secret-key"

func TestHashString_MatchesHMAC(t *testing.T) {
	mac := hmac.New(sha256.New, []byte(testHashKey))
	mac.Write([]byte("refresh-token"))
	want := hex.EncodeToString(mac.Sum(nil))

	if got := HashString("refresh-token", testHashKey); got != want {
		t.Errorf("HashString mismatch:\n  got:  %s\n  want: %s", got, want)
	}
}

func TestHashString_Deterministic(t *testing.T) {
	if HashString("a", testHashKey) != HashString("a", testHashKey) {
		t.Error("same input must produce same hash")
	}
}

func TestHashString_DifferentKeys(t *testing.T) {
	if HashString("a", "key-one") == HashString("a", "key-two") {
		t.Error("different keys must produce different hashes for the same input")
	}
}

func TestNewOpaqueToken(t *testing.T) {
	first, err := NewOpaqueToken(32)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first))
	}

	second, _ := NewOpaqueToken(32)
	if first == second {
		t.Error("two opaque tokens must differ")
	}
}
