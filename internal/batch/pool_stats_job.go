package batch

import (
	"context"
	"customer-service/internal/infrastructure/monitoring"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolStats struct {
	TotalConns    int32
	IdleConns     int32
	AcquiredConns int32
	MaxConns      int32
}

type PoolStatsSource interface {
	PoolStats() PoolStats
}

// PgxPoolStats reads statistics from a live pgx pool.
type PgxPoolStats struct {
	Pool *pgxpool.Pool
}

func (p PgxPoolStats) PoolStats() PoolStats {
	s := p.Pool.Stat()
	return PoolStats{
		TotalConns:    s.TotalConns(),
		IdleConns:     s.IdleConns(),
		AcquiredConns: s.AcquiredConns(),
		MaxConns:      s.MaxConns(),
	}
}

// PoolStatsJob copies connection pool statistics into Prometheus gauges.
type PoolStatsJob struct {
	source PoolStatsSource
	logger *slog.Logger
}

func NewPoolStatsJob(source PoolStatsSource, logger *slog.Logger) *PoolStatsJob {
	if source == nil || logger == nil {
		panic("PoolStatsJob dependencies cannot be nil")
	}
	return &PoolStatsJob{
		source: source,
		logger: logger.With("job", "PoolStats"),
	}
}

func (j *PoolStatsJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stats := j.source.PoolStats()
	monitoring.RecordPoolStats(stats.TotalConns, stats.IdleConns, stats.AcquiredConns, stats.MaxConns)

	j.logger.DebugContext(ctx, "Recorded database pool statistics.",
		slog.Int("total", int(stats.TotalConns)),
		slog.Int("idle", int(stats.IdleConns)),
		slog.Int("acquired", int(stats.AcquiredConns)),
		slog.Int("max", int(stats.MaxConns)),
	)
	return nil
}
