package bunstore

import (
	"github.com/uptrace/bun"

	"consulta/backend/internal/store"
)

func applyFilter(q *bun.SelectQuery, f store.Filter) *bun.SelectQuery {
	for _, p := range f.Where {
		q = wherePredicate(q, p)
	}
	if len(f.Or) > 0 {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, group := range f.Or {
				q = q.WhereGroup(" OR ", func(q *bun.SelectQuery) *bun.SelectQuery {
					for _, p := range group {
						q = wherePredicate(q, p)
					}
					return q
				})
			}
			return q
		})
	}

	if f.Order != nil {
		if f.Order.Desc {
			q = q.OrderExpr("? DESC", bun.Ident(string(f.Order.Field)))
		} else {
			q = q.OrderExpr("? ASC", bun.Ident(string(f.Order.Field)))
		}
	}
	q = q.OrderExpr("id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return q
}

func wherePredicate(q *bun.SelectQuery, p store.Predicate) *bun.SelectQuery {
	col := bun.Ident(string(p.Field))
	if p.Value == nil {
		if p.Op == store.OpNeq {
			return q.Where("? IS NOT NULL", col)
		}
		return q.Where("? IS NULL", col)
	}

	switch p.Op {
	case store.OpNeq:
		return q.Where("? <> ?", col, p.Value)
	case store.OpGte:
		return q.Where("? >= ?", col, p.Value)
	case store.OpLt:
		return q.Where("? < ?", col, p.Value)
	default:
		return q.Where("? = ?", col, p.Value)
	}
}
