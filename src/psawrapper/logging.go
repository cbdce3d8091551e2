// Copyright lowRISC contributors (OpenTitan project).
// Licensed under the Apache License, Version 2.0, see LICENSE for details.
// SPDX-License-Identifier: Apache-2.0

package psawrapper

import (
	"fmt"
	"io"
	"strings"

	"github.com/Mbed-TLS/framework-tools/src/clex"
)

var printfFormat = map[string]string{
	"int":                "%d",
	"long":               "%ld",
	"long long":          "%lld",
	"size_t":             "%zu",
	"unsigned":           "%u",
	"unsigned long":      "%lu",
	"unsigned long long": "%llu",
}

// Types printed through a cast to one of the printfFormat types.
var printfCast = map[string]string{
	"int32_t":  "int",
	"uint32_t": "unsigned",
	"uint64_t": "unsigned long long",

	"mbedtls_svc_key_id_t":      "unsigned",
	"psa_algorithm_t":           "unsigned",
	"psa_drv_slot_number_t":     "unsigned long long",
	"psa_key_derivation_step_t": "int",
	"psa_key_id_t":              "unsigned",
	"psa_key_slot_number_t":     "unsigned long long",
	"psa_key_lifetime_t":        "unsigned",
	"psa_key_type_t":            "unsigned",
	"psa_key_usage_flags_t":     "unsigned",
	"psa_pake_role_t":           "int",
	"psa_pake_step_t":           "int",
	"psa_status_t":              "int",
}

var keyAttributeFields = []string{"id", "lifetime", "type", "bits", "algorithm", "usage_flags"}

// printfParameters returns the printf format fragment and the arguments
// that log a value of type typ held in variable v. An empty format means
// the value is not logged.
func (g *Generator) printfParameters(typ, v string) (string, []string) {
	typ = strings.TrimPrefix(typ, "const ")
	switch {
	case typ == "uint8_t *", strings.HasSuffix(typ, "operation_t *"), g.notImpl[typ]:
		return "", nil
	case typ == "psa_key_attributes_t *":
		args := make([]string, len(keyAttributeFields))
		for i, field := range keyAttributeFields {
			args[i] = fmt.Sprintf("(unsigned) psa_get_key_%s(%s)", field, v)
		}
		return v + "={id=%u, lifetime=0x%08x, type=0x%08x, bits=%u, alg=%08x, usage=%08x}", args
	}
	if cast, ok := printfCast[typ]; ok {
		return v + "=" + printfFormat[cast], []string{fmt.Sprintf("(%s) %s", cast, v)}
	}
	if f, ok := printfFormat[typ]; ok {
		return v + "=" + f, []string{v}
	}
	if strings.HasSuffix(typ, "*") {
		return v + "=%p", []string{"(void *) " + v}
	}
	return "", nil
}

func (g *Generator) writeLogging(w io.Writer, f *clex.Function, names []string) {
	var (
		formats []string
		values  []string
	)
	for i, a := range f.Arguments {
		if a.Suffix != "" {
			continue
		}
		format, vals := g.printfParameters(a.Type, names[i])
		if format != "" {
			formats = append(formats, format)
			values = append(values, vals...)
		}
	}
	format, vals := g.printfParameters(f.ReturnType, "status")
	formats = append(formats, format)
	values = append(values, vals...)

	fmt.Fprintf(w, "#if %s\n", loggingGuard)
	fmt.Fprintf(w, "    if (%s != NULL) {\n", g.Stream)
	fmt.Fprintf(w, "        fprintf(%s, \"%%s:%%d:%s: %s\\n\",\n", g.Stream, f.Name, strings.Join(formats, " "))
	fmt.Fprintf(w, "                __FILE__, __LINE__, %s);\n", strings.Join(values, ", "))
	fmt.Fprint(w, "    }\n")
	fmt.Fprintf(w, "#endif /* %s */\n", loggingGuard)
}
