package anf

import (
	"regexp"
	"strconv"
	"strings"
)

// RenameMarker is the relation of Let binders renamed by Transform.
const RenameMarker = "'"

// ReservedMarker starts labels that are kept verbatim as base names.
const ReservedMarker = "#"

var nonIdent = regexp.MustCompile(`[^A-Za-z_]`)

// BaseName derives the base of generated names from a function label:
//
//	"a/b"       -> ""      (namespaced labels collapse)
//	"#builtin"  -> "#builtin"
//	"add2"      -> "add"   (cut at the first non-identifier character)
func BaseName(label string) string {
	if strings.Contains(label, "/") {
		return ""
	}
	if strings.HasPrefix(label, ReservedMarker) {
		return label
	}
	return nonIdent.Split(label, 2)[0]
}

func joinName(base, tag string) string {
	return base + "/" + tag
}

func defaultTags(n int) []string {
	tags := make([]string, n)
	for i := range tags {
		tags[i] = "in" + strconv.Itoa(i+1)
	}
	return tags
}
