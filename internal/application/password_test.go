package application

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	t.Run("hash and verify round trip", func(t *testing.T) {
		t.Parallel()

		hash, err := CreatePasswordHash("correct horse battery", DefaultArgon2idParams)
		if err != nil {
			t.Fatalf("CreatePasswordHash returned error: %v", err)
		}
		if !strings.HasPrefix(hash, "$argon2id$v=19$") {
			t.Fatalf("unexpected hash format: %s", hash)
		}

		if err := VerifyPassword(hash, "correct horse battery"); err != nil {
			t.Errorf("expected match, got %v", err)
		}
		if err := VerifyPassword(hash, "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("salts differ between hashes", func(t *testing.T) {
		t.Parallel()

		first, err := CreatePasswordHash("same input", DefaultArgon2idParams)
		if err != nil {
			t.Fatalf("CreatePasswordHash returned error: %v", err)
		}
		second, err := CreatePasswordHash("same input", DefaultArgon2idParams)
		if err != nil {
			t.Fatalf("CreatePasswordHash returned error: %v", err)
		}
		if first == second {
			t.Error("two hashes of the same password must not collide")
		}
	})

	t.Run("parameters travel inside the hash", func(t *testing.T) {
		t.Parallel()

		light := Argon2idParams{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
		hash, err := CreatePasswordHash("hunter42", light)
		if err != nil {
			t.Fatalf("CreatePasswordHash returned error: %v", err)
		}
		if err := VerifyPassword(hash, "hunter42"); err != nil {
			t.Errorf("expected match under stored parameters, got %v", err)
		}
	})

	t.Run("rejects malformed hashes", func(t *testing.T) {
		t.Parallel()

		for _, encoded := range []string{
			"",
			"plaintext",
			"$bcrypt$v=19$m=65536,t=2,p=4$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=65536,t=2,p=4$not-base64!$aGFzaA",
		} {
			if err := VerifyPassword(encoded, "whatever"); !errors.Is(err, ErrInvalidPasswordHash) {
				t.Errorf("%q: expected ErrInvalidPasswordHash, got %v", encoded, err)
			}
		}
	})

	t.Run("rejects foreign argon2 versions", func(t *testing.T) {
		t.Parallel()

		encoded := "$argon2id$v=18$m=65536,t=2,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g"
		if err := VerifyPassword(encoded, "whatever"); !errors.Is(err, ErrIncompatiblePasswordVersion) {
			t.Errorf("expected ErrIncompatiblePasswordVersion, got %v", err)
		}
	})
}
