package store

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
)

// LikePattern wraps s for a substring ILIKE match, escaping wildcard characters.
func LikePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// TextArray binds tags as a postgres text[] value. goqu expands a Go slice
// into an IN list and has no case for pgtype arrays, so the array literal is
// encoded here and passed as a single placeholder cast to text[].
func TextArray(tags []string) any {
	var b strings.Builder
	b.WriteByte('{')
	for i, t := range tags {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(t))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return goqu.L("?::text[]", b.String())
}
