package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("hashing failed: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if !CheckPassword(hash, "correct horse battery") {
		t.Errorf("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Errorf("wrong password accepted")
	}
}

func TestCheckPasswordBadHash(t *testing.T) {
	if CheckPassword("not-a-bcrypt-hash", "anything") {
		t.Errorf("malformed hash must never verify")
	}
}
