package datasource

import (
	"database/sql"
	"fmt"
	"strings"
)

// AggregatePlan pairs the column list of a batched aggregate statement
// with the flat scan destinations its single result row produces.
// Column order in the SQL and in the destinations must match, which is
// why both are derived from the same spec slice.
type AggregatePlan struct {
	specs []ColumnSpec
	dests []any
}

// NewAggregatePlan allocates scan destinations for the given specs:
// two counters per column, plus three nullable floats for numeric ones.
func NewAggregatePlan(specs []ColumnSpec) *AggregatePlan {
	p := &AggregatePlan{specs: specs}
	for _, spec := range specs {
		p.dests = append(p.dests, new(int64), new(int64))
		if spec.Numeric {
			p.dests = append(p.dests, new(sql.NullFloat64), new(sql.NullFloat64), new(sql.NullFloat64))
		}
	}
	return p
}

// Dest returns the scan destination list for the aggregate row.
func (p *AggregatePlan) Dest() []any {
	return p.dests
}

// Result assembles the scanned destinations into per-column aggregates.
func (p *AggregatePlan) Result() map[string]ColumnAggregate {
	out := make(map[string]ColumnAggregate, len(p.specs))
	i := 0
	for _, spec := range p.specs {
		agg := ColumnAggregate{
			NullCount:     *p.dests[i].(*int64),
			DistinctCount: *p.dests[i+1].(*int64),
		}
		i += 2
		if spec.Numeric {
			agg.Min = nullableFloat(p.dests[i].(*sql.NullFloat64))
			agg.Max = nullableFloat(p.dests[i+1].(*sql.NullFloat64))
			agg.Mean = nullableFloat(p.dests[i+2].(*sql.NullFloat64))
			i += 3
		}
		out[spec.Name] = agg
	}
	return out
}

// BuildAggregateSQL renders the single aggregate statement for a table.
// tableRef must already be qualified and quoted; quote and castFloat
// supply the dialect's identifier quoting and float-cast syntax.
func BuildAggregateSQL(tableRef string, specs []ColumnSpec, quote func(string) string, castFloat func(quoted string) string) string {
	var exprs []string
	for _, spec := range specs {
		col := quote(spec.Name)
		exprs = append(exprs,
			fmt.Sprintf("COUNT(*) - COUNT(%s)", col),
			fmt.Sprintf("COUNT(DISTINCT %s)", col),
		)
		if spec.Numeric {
			cast := castFloat(col)
			exprs = append(exprs,
				fmt.Sprintf("MIN(%s)", cast),
				fmt.Sprintf("MAX(%s)", cast),
				fmt.Sprintf("AVG(%s)", cast),
			)
		}
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), tableRef)
}

func nullableFloat(v *sql.NullFloat64) *float64 {
	if v == nil || !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
