package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// QueryObserver receives the outcome of every query run on the pool.
type QueryObserver interface {
	ObserveQuery(statement string, d time.Duration, failed bool)
}

type queryTracer struct {
	observer QueryObserver
}

var _ pgx.QueryTracer = (*queryTracer)(nil)

type traceKey struct{}

type traceStart struct {
	at        time.Time
	statement string
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{at: time.Now(), statement: statementName(data.SQL)})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok {
		return
	}
	t.observer.ObserveQuery(start.statement, time.Since(start.at), data.Err != nil)
}

// statementName reduces SQL to "VERB table" so metric labels stay bounded.
// Statements outside the known verbs are grouped as "OTHER".
func statementName(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "OTHER"
	}

	verb := strings.ToUpper(fields[0])
	var marker string
	switch verb {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT":
		marker = "INTO"
	case "UPDATE":
		if len(fields) > 1 {
			return verb + " " + tableName(fields[1])
		}
		return verb
	default:
		return "OTHER"
	}

	for i, f := range fields[:len(fields)-1] {
		if strings.EqualFold(f, marker) {
			return verb + " " + tableName(fields[i+1])
		}
	}
	return verb
}

func tableName(field string) string {
	if i := strings.IndexAny(field, "( "); i >= 0 {
		field = field[:i]
	}
	return strings.ToLower(strings.Trim(field, `"`))
}
