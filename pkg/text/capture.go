package text

import "regexp"

var anonymousGroupRef = regexp.MustCompile(`\\[0-9]`)

// RewriteAnonymousCaptureGroups turns \N references into the ${N} form the
// regexp package expands. The rewrite is purely textual: an escaped
// backslash directly before a digit (\\1) is rewritten as well.
func RewriteAnonymousCaptureGroups(expr string) string {
	return anonymousGroupRef.ReplaceAllStringFunc(expr, func(m string) string {
		return "${" + m[1:] + "}"
	})
}
