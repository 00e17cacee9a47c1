package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	pkgAuth "github.com/polkiloo/pdfshop/internal/pkg/auth"
)

// hashPassword reads the admin password from the first line of r and
// writes a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func hashPassword(r io.Reader, w io.Writer) error {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("empty password")
	}

	hash, err := pkgAuth.NewBcryptHasher(0).Hash(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, hash)
	return err
}
