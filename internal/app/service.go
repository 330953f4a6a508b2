package app

import (
	"context"
	"fmt"

	"github.com/netscenehq/netscene/internal/core/domain"
	"github.com/netscenehq/netscene/internal/core/services/scenecache"
	"github.com/netscenehq/netscene/internal/core/services/workflow"
)

// TopologyService fronts the workflow orchestrator with the scene cache.
// It implements web.SceneService.
type TopologyService struct {
	orchestrator *workflow.Orchestrator
	cache        *scenecache.Cache
	host, site   string
}

// NewTopologyService binds an orchestrator to a cache keyed by the
// controller identity.
func NewTopologyService(o *workflow.Orchestrator, cache *scenecache.Cache, host, site string) *TopologyService {
	return &TopologyService{orchestrator: o, cache: cache, host: host, site: site}
}

func (s *TopologyService) fingerprint(enhanced bool) string {
	variant := "raw"
	if enhanced {
		variant = "enhanced"
	}
	return scenecache.Fingerprint(scenecache.Params{
		Host:    s.host,
		Site:    s.site,
		Variant: variant,
	})
}

// Scene returns the current topology, running a discovery workflow only
// when the cache holds no fresh entry for the variant. Concurrent callers
// on a cold cache share one run.
func (s *TopologyService) Scene(ctx context.Context, enhanced bool) (*domain.Scene, error) {
	scene, err := s.cache.GetOrCompute(ctx, s.fingerprint(enhanced), func(ctx context.Context) (domain.Scene, error) {
		report := s.orchestrator.Run(ctx, workflow.RunParams{Enhanced: enhanced})
		if report.Scene == nil {
			return domain.Scene{}, fmt.Errorf("discovery run %s ended %s", report.RunID, report.Status)
		}
		return *report.Scene, nil
	})
	if err != nil {
		return nil, err
	}
	return &scene, nil
}

// Refresh bypasses and repopulates the cache for the requested variant,
// returning the full run report. A failed run leaves the old cache entries
// untouched beyond the invalidation of the requested variant.
func (s *TopologyService) Refresh(ctx context.Context, enhanced bool) domain.WorkflowReport {
	report := s.orchestrator.Run(ctx, workflow.RunParams{Enhanced: enhanced})
	if report.Status == domain.StatusCompleted && report.Scene != nil {
		s.cache.InvalidateAll()
		s.cache.Put(s.fingerprint(enhanced), *report.Scene)
	}
	return report
}
