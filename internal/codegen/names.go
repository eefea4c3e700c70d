package codegen

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/tagc/internal/model"
)

// Initialisms kept fully upper-case in exported names
var commonInitialisms = map[string]struct{}{
	"ACL": {}, "API": {}, "ASCII": {}, "CPU": {}, "CSS": {}, "DNS": {}, "EOF": {},
	"GUID": {}, "HTML": {}, "HTTP": {}, "HTTPS": {}, "ID": {}, "IP": {}, "JSON": {},
	"LHS": {}, "QPS": {}, "RAM": {}, "RHS": {}, "RPC": {}, "SLA": {}, "SMTP": {},
	"SQL": {}, "SSH": {}, "TCP": {}, "TLS": {}, "TTL": {}, "UDP": {}, "UI": {},
	"UID": {}, "UUID": {}, "URI": {}, "URL": {}, "UTF8": {}, "VM": {}, "XML": {},
	"XMPP": {}, "XSRF": {}, "XSS": {},
}

// ExportName converts a fact name to an exported Go identifier:
// full_height -> FullHeight, id -> ID, fooBar -> FooBar.
func ExportName(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		if _, ok := commonInitialisms[strings.ToUpper(part)]; ok {
			b.WriteString(strings.ToUpper(part))
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}

	out := b.String()
	if r, _ := utf8.DecodeRuneInString(out); out == "" || !unicode.IsUpper(r) {
		return "X" + out
	}
	return out
}

// MethodName returns the accessor name for a fact under the given naming mode
func MethodName(fact, naming string) string {
	if naming == model.NamingRaw {
		return fact
	}
	return ExportName(fact)
}

// receiverName picks a receiver identifier that does not shadow a variant
// constant or the fmt package used by the generated panic.
func receiverName(decl *model.TypeDecl, override string) string {
	if decl.Receiver != "" {
		return decl.Receiver
	}
	if override != "" {
		return override
	}

	r, _ := utf8.DecodeRuneInString(decl.Name)
	base := string(unicode.ToLower(r))
	if !unicode.IsLetter(r) {
		base = "v"
	}

	taken := map[string]bool{"fmt": true}
	for _, v := range decl.Variants {
		taken[v.Name] = true
	}
	for taken[base] {
		base += "v"
	}
	return base
}
