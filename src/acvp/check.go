// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package acvp

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"io"
	"sort"

	"go.uber.org/multierr"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"

	"github.com/Mbed-TLS/framework-tools/src/logger"
)

// ErrMismatch is returned when a reference computation disagrees with the
// expected result of a test case.
var ErrMismatch = errors.New("expected result does not match")

// A Checker recomputes the expected result of a test case.
type Checker func(tc *TestCase) error

var hashes = map[string]func() hash.Hash{
	"SHA2-256": sha256.New,
	"SHA2-384": sha512.New384,
	"SHA2-512": sha512.New,
	"SHA3-224": sha3.New224,
	"SHA3-256": sha3.New256,
	"SHA3-384": sha3.New384,
	"SHA3-512": sha3.New512,
}

var checkers = map[string]Checker{
	"sha3":  checkSHA3,
	"shake": checkSHAKE,
	"hkdf":  checkHKDF,
}

// Checkers lists the names accepted by LookupChecker.
func Checkers() []string {
	var names []string
	for name := range checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupChecker returns the checker with the given name.
func LookupChecker(name string) (Checker, error) {
	c, ok := checkers[name]
	if !ok {
		return nil, fmt.Errorf("unknown checker %q (known: %v)", name, Checkers())
	}
	return c, nil
}

// message returns the first len bits of msg; only whole octets are
// supported.
func message(tc *TestCase) ([]byte, error) {
	msg, err := tc.Bytes("msg")
	if err != nil {
		return nil, err
	}
	if tc.Has("len") {
		bits, err := tc.Int("len")
		if err != nil {
			return nil, err
		}
		if bits%8 != 0 || int(bits/8) > len(msg) {
			return nil, fmt.Errorf("test case %d: unsupported message length %d", tc.TcID, bits)
		}
		msg = msg[:bits/8]
	}
	return msg, nil
}

func compare(tc *TestCase, field string, got []byte) error {
	want, err := tc.Bytes(field)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("test case %d: %w: %s=%x, computed %x", tc.TcID, ErrMismatch, field, want, got)
	}
	return nil
}

func checkSHA3(tc *TestCase) error {
	newHash, ok := hashes[tc.Algorithm]
	if !ok {
		return fmt.Errorf("test case %d: unsupported hash algorithm %q", tc.TcID, tc.Algorithm)
	}
	msg, err := message(tc)
	if err != nil {
		return err
	}
	h := newHash()
	h.Write(msg)
	return compare(tc, "md", h.Sum(nil))
}

func checkSHAKE(tc *TestCase) error {
	var h sha3.ShakeHash
	switch tc.Algorithm {
	case "SHAKE-128":
		h = sha3.NewShake128()
	case "SHAKE-256":
		h = sha3.NewShake256()
	default:
		return fmt.Errorf("test case %d: unsupported XOF %q", tc.TcID, tc.Algorithm)
	}
	msg, err := message(tc)
	if err != nil {
		return err
	}
	outLen, err := tc.Int("outLen")
	if err != nil {
		return err
	}
	if outLen%8 != 0 {
		return fmt.Errorf("test case %d: unsupported output length %d", tc.TcID, outLen)
	}
	h.Write(msg)
	out := make([]byte, outLen/8)
	if _, err := h.Read(out); err != nil {
		return err
	}
	return compare(tc, "md", out)
}

// checkHKDF checks ikm/salt/info/okm cases. The hash is the "hmacAlg"
// field of the group, SHA2-256 by default.
func checkHKDF(tc *TestCase) error {
	alg := "SHA2-256"
	if tc.Has("hmacAlg") {
		var err error
		if alg, err = tc.Str("hmacAlg"); err != nil {
			return err
		}
	}
	newHash, ok := hashes[alg]
	if !ok {
		return fmt.Errorf("test case %d: unsupported hash algorithm %q", tc.TcID, alg)
	}
	var in [3][]byte
	for i, field := range []string{"ikm", "salt", "info"} {
		if !tc.Has(field) && field != "ikm" {
			continue
		}
		b, err := tc.Bytes(field)
		if err != nil {
			return err
		}
		in[i] = b
	}
	want, err := tc.Bytes("okm")
	if err != nil {
		return err
	}
	out := make([]byte, len(want))
	if _, err := io.ReadFull(hkdf.New(newHash, in[0], in[1], in[2]), out); err != nil {
		return fmt.Errorf("test case %d: %v", tc.TcID, err)
	}
	return compare(tc, "okm", out)
}

// Verify runs the checker on every test case. With drop, mismatching cases
// are removed; otherwise every mismatch is reported. Errors other than
// mismatches are always returned.
func (a *ACVP) Verify(check Checker, drop bool) error {
	var errs error
	a.Remove(func(tc *TestCase) bool {
		err := check(tc)
		switch {
		case err == nil:
			return false
		case drop && errors.Is(err, ErrMismatch):
			logger.L().Warnf("dropping %v", err)
			return true
		}
		errs = multierr.Append(errs, err)
		return false
	})
	return errs
}
