package grpc

import (
	"context"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// probe pings the store right away and then every interval, flipping the
// serving status when reachability changes. It returns when ctx is done.
func (s *GRPCServer) probe(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		st := s.check(ctx)
		if ctx.Err() != nil {
			return
		}
		if st != last {
			if st == healthpb.HealthCheckResponse_SERVING {
				s.logger.Info(ctx, "store reachable, serving")
			}
			s.setStatus(st)
			last = st
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *GRPCServer) check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	if s.store == nil {
		return healthpb.HealthCheckResponse_SERVING
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	if err := s.store.Ping(pingCtx); err != nil {
		s.logger.Warn(ctx, "store ping failed", "error", err.Error())
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}
