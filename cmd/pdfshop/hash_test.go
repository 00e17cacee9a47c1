package main

import (
	"bytes"
	"strings"
	"testing"

	pkgAuth "github.com/polkiloo/pdfshop/internal/pkg/auth"
)

func TestHashPassword(t *testing.T) {
	var out bytes.Buffer
	if err := hashPassword(strings.NewReader("s3cret\n"), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hash := strings.TrimSpace(out.String())
	if err := pkgAuth.NewBcryptHasher(0).Compare(hash, "s3cret"); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	var out bytes.Buffer
	if err := hashPassword(strings.NewReader("\n"), &out); err == nil {
		t.Fatal("expected error for empty password")
	}
	if out.Len() != 0 {
		t.Fatal("nothing must be written on error")
	}
}
