// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package testcase

import (
	"fmt"
	"strings"
)

// Domain selects how a dependency is expressed in an Mbed TLS 3.6 tree.
type Domain int

const (
	// Domain36PSA covers code that only uses the PSA API.
	Domain36PSA Domain = iota
	// Domain36Legacy covers code that may go through legacy crypto modules.
	Domain36Legacy
)

var hashes36 = map[string]string{
	"PSA_ALG_MD5":       "MBEDTLS_MD_CAN_MD5",
	"PSA_ALG_RIPEMD160": "MBEDTLS_MD_CAN_RIPEMD160",
	"PSA_ALG_SHA_1":     "MBEDTLS_MD_CAN_SHA1",
	"PSA_ALG_SHA_224":   "MBEDTLS_MD_CAN_SHA224",
	"PSA_ALG_SHA_256":   "MBEDTLS_MD_CAN_SHA256",
	"PSA_ALG_SHA_384":   "MBEDTLS_MD_CAN_SHA384",
	"PSA_ALG_SHA_512":   "MBEDTLS_MD_CAN_SHA512",
	"PSA_ALG_SHA3_224":  "MBEDTLS_MD_CAN_SHA3_224",
	"PSA_ALG_SHA3_256":  "MBEDTLS_MD_CAN_SHA3_256",
	"PSA_ALG_SHA3_384":  "MBEDTLS_MD_CAN_SHA3_384",
	"PSA_ALG_SHA3_512":  "MBEDTLS_MD_CAN_SHA3_512",
}

var pkMacros36 = map[string]string{
	"PSA_KEY_TYPE_ECC_PUBLIC_KEY": "MBEDTLS_PK_HAVE_ECC_KEYS",
}

// PSAWantSymbol returns the PSA_WANT_xxx symbol for a PSA_xxx constant name.
func PSAWantSymbol(name string) (string, error) {
	if !strings.HasPrefix(name, "PSA_") {
		return "", fmt.Errorf("cannot determine PSA_WANT symbol for %s", name)
	}
	return "PSA_WANT_" + strings.TrimPrefix(name, "PSA_"), nil
}

// PSAOr36FeatureMacro returns the dependency symbol for psaAlg. In a 3.6
// tree outside the PSA domain, hash and public key dependencies use the
// legacy MBEDTLS_xxx symbols.
func PSAOr36FeatureMacro(psaAlg string, domain Domain, isMbedTLS36 bool) (string, error) {
	_, isHash := hashes36[psaAlg]
	_, isPK := pkMacros36[psaAlg]
	if domain == Domain36PSA || !isMbedTLS36 {
		if isHash || isPK {
			return PSAWantSymbol(psaAlg)
		}
	}
	if m, ok := hashes36[psaAlg]; ok {
		return m, nil
	}
	if m, ok := pkMacros36[psaAlg]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unable to determine dependency symbol for %s", psaAlg)
}
