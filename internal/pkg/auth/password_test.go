package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptHasher_DefaultCost(t *testing.T) {
	hasher := NewBcryptHasher(0)
	if hasher.cost != bcrypt.DefaultCost {
		t.Fatalf("unexpected cost: %d", hasher.cost)
	}
}

func TestNewBcryptHasher_CustomCost(t *testing.T) {
	cost := bcrypt.DefaultCost + 2
	hasher := NewBcryptHasher(cost)
	if hasher.cost != cost {
		t.Fatalf("unexpected cost: %d", hasher.cost)
	}
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.DefaultCost)
	hash, err := hasher.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if err := hasher.Compare(hash, "secret"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := hasher.Compare(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch for wrong password, got %v", err)
	}
}

func TestBcryptHasher_HashError(t *testing.T) {
	hasher := &BcryptHasher{cost: bcrypt.MaxCost + 1}
	if _, err := hasher.Hash("password"); err == nil {
		t.Fatal("expected hash error for invalid cost")
	}
}

func TestBcryptHasher_CompareEmptyHash(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	if err := hasher.Compare("", "anything"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected mismatch for empty hash, got %v", err)
	}
}

func TestBcryptHasher_CompareMalformedHash(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	err := hasher.Compare("not-a-bcrypt-hash", "secret")
	if err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected malformed hash error, got %v", err)
	}
}
