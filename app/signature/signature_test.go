package signature

import (
	"strings"
	"testing"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	secret := "test-key-secret"
	message := ConfirmationMessage("ord_abc123", "pay_def456")

	digest := Sign(secret, message)
	if len(digest) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(digest))
	}
	if !Verify(secret, message, digest) {
		t.Fatal("expected round-trip verification to pass")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	message := []byte(`{"event":"payment.captured"}`)
	digest := Sign("webhook-secret", message)

	if Verify("other-secret", message, digest) {
		t.Fatal("expected digest under wrong secret to fail")
	}
}

func TestVerifyRejectsMutatedMessage(t *testing.T) {
	secret := "test-key-secret"
	message := []byte("ord_abc123|pay_def456")
	digest := Sign(secret, message)

	for i := range message {
		mutated := make([]byte, len(message))
		copy(mutated, message)
		mutated[i] ^= 0x01
		if Verify(secret, mutated, digest) {
			t.Fatalf("expected mutation at byte %d to fail verification", i)
		}
	}
}

func TestVerifyRejectsMutatedDigest(t *testing.T) {
	secret := "test-key-secret"
	message := []byte("ord_abc123|pay_def456")
	digest := Sign(secret, message)

	for i := range digest {
		replacement := "0"
		if digest[i] == '0' {
			replacement = "1"
		}
		mutated := digest[:i] + replacement + digest[i+1:]
		if Verify(secret, message, mutated) {
			t.Fatalf("expected mutation at hex digit %d to fail verification", i)
		}
	}
}

func TestVerifyRejectsMalformedDigest(t *testing.T) {
	secret := "test-key-secret"
	message := []byte("ord_abc123|pay_def456")

	for _, supplied := range []string{"", "zz", "not-hex", strings.Repeat("0", 63)} {
		if Verify(secret, message, supplied) {
			t.Fatalf("expected malformed digest %q to fail verification", supplied)
		}
	}
}

func TestVerifyRejectsEmptySecret(t *testing.T) {
	message := []byte("ord_abc123|pay_def456")
	if Verify("", message, Sign("", message)) {
		t.Fatal("expected verification with empty secret to fail")
	}
}

func FuzzVerifyOnlyAcceptsOwnDigest(f *testing.F) {
	f.Add("secret", "ord_1|pay_1", "")
	f.Add("secret", "ord_1|pay_1", "deadbeef")
	f.Fuzz(func(t *testing.T, secret, message, supplied string) {
		digest := Sign(secret, []byte(message))
		if secret != "" && !Verify(secret, []byte(message), digest) {
			t.Fatalf("own digest rejected for secret=%q message=%q", secret, message)
		}
		if !strings.EqualFold(strings.TrimSpace(supplied), digest) && Verify(secret, []byte(message), supplied) {
			t.Fatalf("foreign digest accepted for message=%q", message)
		}
	})
}
