package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify_RoundTrip(t *testing.T) {
	digest, err := Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if digest == "s3cret" {
		t.Fatalf("digest must not equal plaintext")
	}
	if !strings.HasPrefix(digest, "$2") {
		t.Fatalf("expected bcrypt digest, got %q", digest)
	}
	if !Verify("s3cret", digest) {
		t.Fatalf("expected digest to verify against original plaintext")
	}
	if Verify("other", digest) {
		t.Fatalf("expected mismatching plaintext to fail")
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	if _, err := Hash(""); err != ErrEmptyPassword {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestVerify_LegacyPlaintext(t *testing.T) {
	if !Verify("oldpass", "oldpass") {
		t.Fatalf("legacy record should match on exact equality")
	}
	if Verify("oldpass2", "oldpass") {
		t.Fatalf("legacy record must not match a different password")
	}
	if Verify("", "") {
		t.Fatalf("empty digest must never verify")
	}
}

func TestIsHashed(t *testing.T) {
	digest, err := Hash("pw")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !IsHashed(digest) {
		t.Fatalf("bcrypt digest not recognized as hashed")
	}
	if IsHashed("plain-old-password") {
		t.Fatalf("legacy record misdetected as hashed")
	}
}
