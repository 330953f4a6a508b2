package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/netscenehq/netscene/internal/core/domain"
	"github.com/netscenehq/netscene/internal/core/ports"
	"github.com/netscenehq/netscene/internal/core/services/classify"
	"github.com/netscenehq/netscene/internal/core/services/scene"
	"github.com/netscenehq/netscene/internal/telemetry"
)

// Config tunes the orchestrator.
type Config struct {
	// ConnectRetries bounds transient-failure retries of the Connect step.
	ConnectRetries int
	// ConnectBackoff is the base delay between Connect attempts; it doubles
	// per attempt.
	ConnectBackoff time.Duration
	// EnrichConcurrency bounds the in-flight device enrichment batch.
	EnrichConcurrency int
}

func (c Config) withDefaults() Config {
	if c.ConnectRetries <= 0 {
		c.ConnectRetries = 3
	}
	if c.ConnectBackoff <= 0 {
		c.ConnectBackoff = 500 * time.Millisecond
	}
	if c.EnrichConcurrency <= 0 {
		c.EnrichConcurrency = 8
	}
	return c
}

// RunParams selects what one workflow run produces.
type RunParams struct {
	// Enhanced requests the icon/model overlay variant of the scene.
	Enhanced bool
}

// Orchestrator drives the discovery pipeline as an ordered sequence of
// steps: Connect, Collect, Identify, Enrich, Export. Item-level failures
// are aggregated into the report; only Connect failure aborts a run.
type Orchestrator struct {
	collector  ports.TopologyCollector
	resolver   ports.VendorResolver
	classifier *classify.Classifier
	normalizer *scene.Normalizer
	visuals    ports.VisualProvider
	store      ports.SceneStore     // optional export collaborator
	publisher  ports.ScenePublisher // optional export collaborator
	cfg        Config
}

// New creates an orchestrator. store and publisher may be nil; the Export
// step then skips them.
func New(
	collector ports.TopologyCollector,
	resolver ports.VendorResolver,
	classifier *classify.Classifier,
	visuals ports.VisualProvider,
	store ports.SceneStore,
	publisher ports.ScenePublisher,
	cfg Config,
) *Orchestrator {
	return &Orchestrator{
		collector:  collector,
		resolver:   resolver,
		classifier: classifier,
		normalizer: scene.NewNormalizer(),
		visuals:    visuals,
		store:      store,
		publisher:  publisher,
		cfg:        cfg.withDefaults(),
	}
}

// Run executes the full pipeline and always returns a report. The report
// status is Completed, Failed (control plane unreachable) or Cancelled;
// partial data quality issues surface only in the report's error list.
func (o *Orchestrator) Run(ctx context.Context, params RunParams) domain.WorkflowReport {
	report := domain.WorkflowReport{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
	}
	defer func() {
		report.Finished = time.Now().UTC()
		telemetry.WorkflowRuns.WithLabelValues(string(report.Status)).Inc()
	}()

	// Connect: the only fatal abort path.
	connectResult, err := o.connect(ctx)
	report.Steps = append(report.Steps, connectResult)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			report.Status = domain.StatusCancelled
			return report
		}
		slog.Error("workflow aborted: control plane unreachable", "run_id", report.RunID, "err", err)
		report.Status = domain.StatusFailed
		report.Errors = append(report.Errors, domain.ItemError{
			Step:    domain.StepConnect,
			Message: err.Error(),
		})
		return report
	}

	if cancelled(ctx, &report) {
		return report
	}

	// Collect and normalize the snapshot.
	sc, collectResult := o.collect(ctx)
	report.Steps = append(report.Steps, collectResult)
	report.Errors = append(report.Errors, collectResult.Errors...)

	if cancelled(ctx, &report) {
		return report
	}

	// Identify: bounded-concurrency enrichment, order preserved by index.
	identifyResult, err := o.identify(ctx, &sc)
	report.Steps = append(report.Steps, identifyResult)
	report.Errors = append(report.Errors, identifyResult.Errors...)
	if err != nil {
		// Only cancellation escapes the identify batch.
		report.Status = domain.StatusCancelled
		return report
	}

	if cancelled(ctx, &report) {
		return report
	}

	// Enrich: overlay the visual metadata when requested.
	final := sc
	enrichStart := time.Now()
	if params.Enhanced {
		final = scene.Enhance(sc, o.visuals)
	}
	report.Steps = append(report.Steps, domain.StepResult{
		Step:     domain.StepEnrich,
		Items:    len(final.Devices),
		Duration: time.Since(enrichStart),
	})
	report.Scene = &final

	if cancelled(ctx, &report) {
		report.Scene = nil
		return report
	}

	// Export: best-effort collaborators, item errors only.
	report.Status = domain.StatusCompleted
	exportResult := o.export(ctx, report)
	report.Steps = append(report.Steps, exportResult)
	report.Errors = append(report.Errors, exportResult.Errors...)

	return report
}

func (o *Orchestrator) connect(ctx context.Context) (domain.StepResult, error) {
	start := time.Now()
	result := domain.StepResult{Step: domain.StepConnect}

	var err error
	backoff := o.cfg.ConnectBackoff
	for attempt := 0; attempt < o.cfg.ConnectRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				result.Duration = time.Since(start)
				return result, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if err = o.collector.Connect(ctx); err == nil {
			result.Duration = time.Since(start)
			return result, nil
		}
		if ctx.Err() != nil {
			result.Duration = time.Since(start)
			return result, ctx.Err()
		}
		slog.Warn("connect attempt failed", "attempt", attempt+1, "err", err)
	}

	result.Duration = time.Since(start)
	return result, fmt.Errorf("connect failed after %d attempts: %w", o.cfg.ConnectRetries, err)
}

func (o *Orchestrator) collect(ctx context.Context) (domain.Scene, domain.StepResult) {
	start := time.Now()
	result := domain.StepResult{Step: domain.StepCollect}

	raw, err := o.collector.Collect(ctx)
	if err != nil {
		// Partial-failure semantics: a failed snapshot degrades to an empty
		// one and is reported, it does not abort the run.
		result.Errors = append(result.Errors, domain.ItemError{
			Step:    domain.StepCollect,
			Message: err.Error(),
		})
	}

	sc, stats := o.normalizer.Normalize(raw)
	result.Items = len(sc.Devices)
	result.Dropped = stats.DroppedDevices + stats.DroppedConnections
	if stats.DroppedDevices > 0 {
		result.Errors = append(result.Errors, domain.ItemError{
			Step:    domain.StepCollect,
			Message: fmt.Sprintf("%d device records dropped: no identifying fields", stats.DroppedDevices),
		})
	}
	if stats.DroppedConnections > 0 {
		result.Errors = append(result.Errors, domain.ItemError{
			Step:    domain.StepCollect,
			Message: fmt.Sprintf("%d connection records dropped: unresolved endpoints", stats.DroppedConnections),
		})
	}

	result.Duration = time.Since(start)
	return sc, result
}

// enrichment is the per-device outcome of the identify batch, applied by
// index so the scene keeps discovery order.
type enrichment struct {
	vendorName string
	devType    domain.DeviceType
	confidence domain.Confidence
	err        *domain.ItemError
}

func (o *Orchestrator) identify(ctx context.Context, sc *domain.Scene) (domain.StepResult, error) {
	start := time.Now()
	result := domain.StepResult{Step: domain.StepIdentify, Items: len(sc.Devices)}

	results := make([]enrichment, len(sc.Devices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.EnrichConcurrency)

	for i := range sc.Devices {
		i := i
		dev := sc.Devices[i]
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = o.enrichDevice(gctx, dev)
			return nil
		})
	}

	err := g.Wait()
	if ctx.Err() != nil {
		// Cancelled mid-batch: abandon the computed results, no partial
		// device mutation becomes visible.
		result.Duration = time.Since(start)
		return result, ctx.Err()
	}
	if err != nil {
		result.Duration = time.Since(start)
		return result, err
	}

	for i := range sc.Devices {
		r := results[i]
		if r.vendorName != "" {
			sc.Devices[i].VendorName = r.vendorName
		}
		sc.Devices[i].Type = r.devType
		sc.Devices[i].Confidence = r.confidence
		if r.err != nil {
			result.Errors = append(result.Errors, *r.err)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (o *Orchestrator) enrichDevice(ctx context.Context, dev domain.Device) enrichment {
	var out enrichment

	if dev.MAC != "" && o.resolver != nil {
		vendor, err := o.resolver.Resolve(ctx, dev.MAC)
		if err != nil {
			// Degrades to unknown vendor; recorded, never fatal.
			out.err = &domain.ItemError{
				Step:    domain.StepIdentify,
				Item:    dev.ID,
				Message: fmt.Sprintf("vendor lookup: %v", err),
			}
		} else {
			out.vendorName = vendor
		}
	}

	out.devType, out.confidence = o.classifier.Classify(classify.Input{
		MAC:        dev.MAC,
		VendorName: out.vendorName,
		Model:      dev.Meta(domain.MetaModel),
		Hostname:   firstNonEmpty(dev.Meta(domain.MetaHostname), dev.Name),
	})
	return out
}

func (o *Orchestrator) export(ctx context.Context, report domain.WorkflowReport) domain.StepResult {
	start := time.Now()
	result := domain.StepResult{Step: domain.StepExport}

	if o.store != nil {
		if err := o.store.SaveSnapshot(ctx, report); err != nil {
			result.Errors = append(result.Errors, domain.ItemError{
				Step:    domain.StepExport,
				Message: fmt.Sprintf("snapshot store: %v", err),
			})
		} else {
			result.Items++
		}
	}

	if o.publisher != nil && report.Scene != nil {
		o.publisher.PublishScene(*report.Scene)
		result.Items++
	}

	result.Duration = time.Since(start)
	return result
}

func cancelled(ctx context.Context, report *domain.WorkflowReport) bool {
	if ctx.Err() == nil {
		return false
	}
	report.Status = domain.StatusCancelled
	report.Scene = nil
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
