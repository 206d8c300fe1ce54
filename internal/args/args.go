// Package args converts between an ordered set of named arguments and the flat
// command-line form exchanged with a child process.
//
// The wire format is a sequence of "-<key>[ <value>]" tokens separated by a
// single space with no trailing space. Children recover the structure with
// DecodeKeys and DecodeValues (or ReadKeys/ReadValues on their own os.Args).
package args

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Delimiter prefixes every key token on the command line.
const Delimiter = "-"

// DiagnosticKind classifies a non-fatal encoding problem.
type DiagnosticKind string

const (
	// DiagMissing is reported when only one of keys and values is nil.
	DiagMissing DiagnosticKind = "missing"
	// DiagLengthMismatch is reported when keys and values differ in length.
	DiagLengthMismatch DiagnosticKind = "length_mismatch"
	// DiagPrefixedKey is reported for a key that already starts with Delimiter.
	DiagPrefixedKey DiagnosticKind = "prefixed_key"
)

// Diagnostic describes a pair (or the whole input) that Encode dropped.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Index   int            `json:"index"`
	Key     string         `json:"key,omitempty"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string { return d.Message }

// Encode builds the argument string for keys and values. Problems are logged
// through slog.Default and never abort the encoding.
func Encode(keys, values []string) string {
	out, diags := EncodeChecked(keys, values)
	for _, d := range diags {
		slog.Default().Warn("argument pair dropped", "kind", string(d.Kind), "index", d.Index, "key", d.Key, "reason", d.Message)
	}
	return out
}

// EncodeChecked is Encode without logging: dropped pairs are returned as diagnostics.
// Empty keys are skipped without a diagnostic.
func EncodeChecked(keys, values []string) (string, []Diagnostic) {
	if keys == nil && values == nil {
		return "", nil
	}
	if keys == nil || values == nil {
		return "", []Diagnostic{{Kind: DiagMissing, Index: -1, Message: "argument keys or values are nil"}}
	}
	if len(keys) != len(values) {
		return "", []Diagnostic{{
			Kind:    DiagLengthMismatch,
			Index:   -1,
			Message: fmt.Sprintf("argument keys (%d) and values (%d) must have the same length", len(keys), len(values)),
		}}
	}

	var (
		b     strings.Builder
		diags []Diagnostic
	)
	for i, key := range keys {
		if key == "" {
			continue
		}
		if strings.HasPrefix(key, Delimiter) {
			diags = append(diags, Diagnostic{
				Kind:    DiagPrefixedKey,
				Index:   i,
				Key:     key,
				Message: fmt.Sprintf("key %q at index %d starts with %q", key, i, Delimiter),
			})
			continue
		}
		b.WriteString(Delimiter)
		b.WriteString(key)
		if v := values[i]; v != "" {
			b.WriteByte(' ')
			b.WriteString(v)
		}
		b.WriteByte(' ')
	}
	return strings.TrimSuffix(b.String(), " "), diags
}

// Split tokenises an encoded argument string into the argv tail handed to the
// OS process API.
func Split(encoded string) []string {
	if encoded == "" {
		return nil
	}
	return strings.Fields(encoded)
}

// DecodeKeys returns every token of argv after the executable (index 0) that
// starts with Delimiter, delimiter included, in order of appearance.
func DecodeKeys(argv []string) []string {
	out := []string{}
	for i := 1; i < len(argv); i++ {
		if strings.HasPrefix(argv[i], Delimiter) {
			out = append(out, argv[i])
		}
	}
	return out
}

// DecodeValues returns every token of argv after the executable that does not
// start with Delimiter. It assumes strict key/value alternation and does not
// detect keys without a value or consecutive bare tokens.
func DecodeValues(argv []string) []string {
	out := []string{}
	for i := 1; i < len(argv); i++ {
		if !strings.HasPrefix(argv[i], Delimiter) {
			out = append(out, argv[i])
		}
	}
	return out
}

// ReadKeys decodes the keys passed to the current process.
func ReadKeys() []string { return DecodeKeys(os.Args) }

// ReadValues decodes the values passed to the current process.
func ReadValues() []string { return DecodeValues(os.Args) }
