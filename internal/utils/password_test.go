package utils

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hashing failed: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPasswordHash("secret1", hash) {
		t.Fatal("correct password must verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Fatal("wrong password must not verify")
	}
}
