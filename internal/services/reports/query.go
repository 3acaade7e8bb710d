package reports

import (
	"fmt"
	"strings"

	"restaurant-pos/internal/models"
)

// queryBuilder collects AND predicates with numbered placeholders.
type queryBuilder struct {
	conds []string
	args  []any
}

// arg registers v and returns its placeholder.
func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *queryBuilder) where(cond string) {
	b.conds = append(b.conds, cond)
}

// dateRange restricts col to the inclusive calendar days of r.
func (b *queryBuilder) dateRange(col string, r models.DateRange) {
	start, end := r.Bounds()
	if start != nil {
		b.where(col + "::date >= " + b.arg(*start) + "::date")
	}
	if end != nil {
		b.where(col + "::date <= " + b.arg(*end) + "::date")
	}
}

// clause renders the predicates to append after an existing WHERE.
func (b *queryBuilder) clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return "\n\t\tAND " + strings.Join(b.conds, "\n\t\tAND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
