// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

// Package mldsa generates ML-DSA (FIPS 204) test cases for the mldsa-native
// entry points, using circl as the reference implementation.
package mldsa

import (
	"fmt"
	"sort"

	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"

	"github.com/Mbed-TLS/framework-tools/src/testcase"
)

// Target is the data file holding all ML-DSA test cases.
const Target = "test_suite_pqcp_mldsa.circl"

// Key is an ML-DSA key pair derived from a seed.
type Key struct {
	KL     int
	Seed   []byte
	Public []byte
	Secret []byte
	sign   func(msg []byte, randomized bool) ([]byte, error)
	verify func(msg, sig []byte) bool
}

// Sign signs msg with an empty context. Randomized signatures differ on
// every call.
func (k *Key) Sign(msg []byte, randomized bool) ([]byte, error) {
	sig, err := k.sign(msg, randomized)
	if err != nil {
		return nil, fmt.Errorf("ML-DSA-%d signature failed: %v", k.KL, err)
	}
	if !k.verify(msg, sig) {
		return nil, fmt.Errorf("ML-DSA-%d signature does not verify", k.KL)
	}
	return sig, nil
}

type keyFromSeed func(seed *[32]byte) *Key

var parameterSets = map[int]keyFromSeed{
	44: func(seed *[32]byte) *Key {
		pk, sk := mldsa44.NewKeyFromSeed(seed)
		return &Key{
			KL: 44, Seed: seed[:], Public: pk.Bytes(), Secret: sk.Bytes(),
			sign: func(msg []byte, randomized bool) ([]byte, error) {
				sig := make([]byte, mldsa44.SignatureSize)
				return sig, mldsa44.SignTo(sk, msg, nil, randomized, sig)
			},
			verify: func(msg, sig []byte) bool { return mldsa44.Verify(pk, msg, nil, sig) },
		}
	},
	65: func(seed *[32]byte) *Key {
		pk, sk := mldsa65.NewKeyFromSeed(seed)
		return &Key{
			KL: 65, Seed: seed[:], Public: pk.Bytes(), Secret: sk.Bytes(),
			sign: func(msg []byte, randomized bool) ([]byte, error) {
				sig := make([]byte, mldsa65.SignatureSize)
				return sig, mldsa65.SignTo(sk, msg, nil, randomized, sig)
			},
			verify: func(msg, sig []byte) bool { return mldsa65.Verify(pk, msg, nil, sig) },
		}
	},
	87: func(seed *[32]byte) *Key {
		pk, sk := mldsa87.NewKeyFromSeed(seed)
		return &Key{
			KL: 87, Seed: seed[:], Public: pk.Bytes(), Secret: sk.Bytes(),
			sign: func(msg []byte, randomized bool) ([]byte, error) {
				sig := make([]byte, mldsa87.SignatureSize)
				return sig, mldsa87.SignTo(sk, msg, nil, randomized, sig)
			},
			verify: func(msg, sig []byte) bool { return mldsa87.Verify(pk, msg, nil, sig) },
		}
	},
}

// DefaultLevels are the parameter sets enabled in mldsa-native builds.
var DefaultLevels = []int{87}

// Seeds are the private key seeds to test with.
var Seeds = [][32]byte{
	seedOf("There was once upon a time a ..."),
	{},
}

func seedOf(s string) [32]byte {
	var seed [32]byte
	copy(seed[:], s)
	return seed
}

// Message is a test input with a short description of it.
type Message struct {
	Data  []byte
	Descr string
}

func repeat(s string, n int) []byte {
	var b []byte
	for i := 0; i < n; i++ {
		b = append(b, s...)
	}
	return b
}

var Messages = []Message{
	{Data: []byte("This is a test")},
	{Data: []byte{}, Descr: "empty message"},
	{Data: []byte{0x00}, Descr: `"\x00"`},
	{Data: []byte{0x01}, Descr: `"\x01"`},
	{Data: repeat("ACBDEFGHIJ", 100), Descr: "1000B"},
}

// Keys returns the key pairs of parameter set kl, one per seed.
func Keys(kl int) ([]*Key, error) {
	fromSeed, ok := parameterSets[kl]
	if !ok {
		return nil, fmt.Errorf("unsupported ML-DSA parameter set %d", kl)
	}
	var keys []*Key
	for i := range Seeds {
		keys = append(keys, fromSeed(&Seeds[i]))
	}
	return keys, nil
}

func dependency(kl int) []string {
	return []string{fmt.Sprintf("TF_PSA_CRYPTO_PQCP_MLDSA_%d_ENABLED", kl)}
}

func keyPairCase(key *Key, descr string) *testcase.TestCase {
	return &testcase.TestCase{
		Description:  fmt.Sprintf("MLDSA-%d key pair from seed %s", key.KL, descr),
		Dependencies: dependency(key.KL),
		Function:     fmt.Sprintf("key_pair_from_seed_%d", key.KL),
		Arguments: []string{
			testcase.HexString(key.Seed),
			testcase.HexString(key.Secret),
			testcase.HexString(key.Public),
		},
	}
}

func signCase(key *Key, msg []byte, descr string) (*testcase.TestCase, error) {
	sig, err := key.Sign(msg, false)
	if err != nil {
		return nil, err
	}
	// The mldsa-native API takes the expanded secret key, not the seed.
	return &testcase.TestCase{
		Description:  fmt.Sprintf("MLDSA-%d sign deterministic %s", key.KL, descr),
		Dependencies: dependency(key.KL),
		Function:     fmt.Sprintf("sign_deterministic_pure_%d", key.KL),
		Arguments: []string{
			testcase.HexString(key.Secret),
			testcase.HexString(msg),
			testcase.HexString(sig),
		},
	}, nil
}

func verifyCase(key *Key, msg []byte, randomized bool, descr string) (*testcase.TestCase, error) {
	sig, err := key.Sign(msg, randomized)
	if err != nil {
		return nil, err
	}
	variant := "deterministic"
	if randomized {
		variant = "randomized"
	}
	return &testcase.TestCase{
		Description:  fmt.Sprintf("MLDSA-%d verify %s %s", key.KL, variant, descr),
		Dependencies: dependency(key.KL),
		Function:     fmt.Sprintf("verify_pure_%d", key.KL),
		Arguments: []string{
			testcase.HexString(key.Public),
			testcase.HexString(msg),
			testcase.HexString(sig),
		},
	}, nil
}

// pureCases returns the signature and verification cases: every key on the
// first message, then the first key on each other message.
func pureCases(keys []*Key) ([]*testcase.TestCase, error) {
	var cases []*testcase.TestCase
	each := func(mk func(key *Key, msg []byte, descr string) (*testcase.TestCase, error)) error {
		for i, key := range keys {
			tc, err := mk(key, Messages[0].Data, fmt.Sprintf("key#%d", i+1))
			if err != nil {
				return err
			}
			cases = append(cases, tc)
		}
		for _, m := range Messages[1:] {
			tc, err := mk(keys[0], m.Data, "key#1 "+m.Descr)
			if err != nil {
				return err
			}
			cases = append(cases, tc)
		}
		return nil
	}
	steps := []func(key *Key, msg []byte, descr string) (*testcase.TestCase, error){
		signCase,
		func(key *Key, msg []byte, descr string) (*testcase.TestCase, error) {
			return verifyCase(key, msg, false, descr)
		},
		func(key *Key, msg []byte, descr string) (*testcase.TestCase, error) {
			return verifyCase(key, msg, true, descr)
		},
	}
	for _, step := range steps {
		if err := each(step); err != nil {
			return nil, err
		}
	}
	return cases, nil
}

// Cases returns all test cases for the given parameter sets.
func Cases(levels []int) ([]*testcase.TestCase, error) {
	levels = append([]int(nil), levels...)
	sort.Ints(levels)
	var cases []*testcase.TestCase
	for _, kl := range levels {
		keys, err := Keys(kl)
		if err != nil {
			return nil, err
		}
		for i, key := range keys {
			cases = append(cases, keyPairCase(key, fmt.Sprintf("key#%d", i+1)))
		}
		pure, err := pureCases(keys)
		if err != nil {
			return nil, err
		}
		cases = append(cases, pure...)
	}
	return cases, nil
}
