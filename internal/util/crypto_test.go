package util

import "testing"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("new salt: %v", err)
	}
	key := DeriveKey("a reasonably long local secret", salt)

	out, err := EncryptString(key, "bearer-token-value")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if out == "bearer-token-value" {
		t.Fatalf("ciphertext must differ from plaintext")
	}
	plain, err := DecryptString(key, out)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "bearer-token-value" {
		t.Fatalf("round trip mismatch: %q", plain)
	}
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	t.Parallel()
	salt, _ := NewSalt()
	key := DeriveKey("secret-one", salt)
	other := DeriveKey("secret-two", salt)

	out, err := EncryptString(key, "payload")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := DecryptString(other, out); err == nil {
		t.Fatalf("expected decryption with wrong key to fail")
	}
	if _, err := DecryptString(key, "!!not-base64!!"); err == nil {
		t.Fatalf("expected malformed payload to fail")
	}
}
