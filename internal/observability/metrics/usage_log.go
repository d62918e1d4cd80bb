package metrics

import (
	"context"

	"github.com/oblicore/oblicore/internal/core/domain"
	"github.com/oblicore/oblicore/internal/core/ports"
)

// InstrumentedUsageLog mirrors every appended record into worker metrics.
// The underlying log stays the source of truth for spend.
type InstrumentedUsageLog struct {
	next    ports.UsageLog
	metrics *WorkerMetrics
	service string
}

func NewInstrumentedUsageLog(next ports.UsageLog, m *WorkerMetrics, service string) *InstrumentedUsageLog {
	return &InstrumentedUsageLog{next: next, metrics: m, service: service}
}

func (l *InstrumentedUsageLog) Append(ctx context.Context, record domain.UsageRecord) error {
	if l.metrics != nil {
		l.metrics.RecordCacheLookup(l.service, record.Stage, record.CacheHit)
		if !record.CacheHit {
			l.metrics.RecordUsage(l.service, record.Stage, record.Model, record.InputTokens, record.OutputTokens, record.Cost)
		}
	}
	return l.next.Append(ctx, record)
}

func (l *InstrumentedUsageLog) SumCost(ctx context.Context, documentID string) (float64, error) {
	return l.next.SumCost(ctx, documentID)
}
