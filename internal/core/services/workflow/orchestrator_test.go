package workflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/netscenehq/netscene/internal/core/domain"
	"github.com/netscenehq/netscene/internal/core/ports"
	"github.com/netscenehq/netscene/internal/core/services/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCollector scripts Connect/Collect behavior.
type fakeCollector struct {
	mu           sync.Mutex
	connectErrs  []error // consumed per attempt, then nil
	collectErr   error
	collection   domain.RawCollection
	connectCalls int
	collectCalls int
}

func (f *fakeCollector) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectCalls++
	if len(f.connectErrs) > 0 {
		err := f.connectErrs[0]
		f.connectErrs = f.connectErrs[1:]
		return err
	}
	return nil
}

func (f *fakeCollector) Collect(ctx context.Context) (domain.RawCollection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collectCalls++
	return f.collection, f.collectErr
}

// fakeResolver maps MACs to vendors, optionally failing or stalling.
type fakeResolver struct {
	vendors map[string]string
	fail    map[string]bool
	delay   time.Duration
	calls   int32
}

func (f *fakeResolver) Resolve(ctx context.Context, mac string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.fail[mac] {
		return "", errors.New("all lookup tiers exhausted")
	}
	if v, ok := f.vendors[mac]; ok {
		return v, nil
	}
	return "", errors.New("vendor not found")
}

type fakeVisuals struct{}

func (fakeVisuals) Visual(t domain.DeviceType) domain.VisualMeta {
	return domain.VisualMeta{IconRef: "icons/" + string(t) + ".svg", ModelRef: "models/" + string(t) + ".glb"}
}

type fakeStore struct {
	mu    sync.Mutex
	saved []domain.WorkflowReport
	err   error
}

func (f *fakeStore) SaveSnapshot(ctx context.Context, report domain.WorkflowReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, report)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	scenes []domain.Scene
}

func (f *fakePublisher) PublishScene(s domain.Scene) {
	f.mu.Lock()
	f.scenes = append(f.scenes, s)
	f.mu.Unlock()
}

func testCollection() domain.RawCollection {
	return domain.RawCollection{
		Devices: []domain.RawDevice{
			{MAC: "00:00:00:00:00:01", Name: "gateway", Model: "UXG-Pro"},
			{MAC: "00:00:00:00:00:02", Name: "desk-phone"},
			{MAC: "00:00:00:00:00:03", Name: "laptop"},
		},
		Connections: []domain.RawConnection{
			{FromRef: "00:00:00:00:00:01", ToRef: "00:00:00:00:00:02", Status: domain.StatusActive, Type: domain.LinkUplink},
		},
	}
}

func newTestOrchestrator(c *fakeCollector, r *fakeResolver, store *fakeStore, pub *fakePublisher) *Orchestrator {
	var s ports.SceneStore
	if store != nil {
		s = store
	}
	var p ports.ScenePublisher
	if pub != nil {
		p = pub
	}
	return New(c, r, classify.New(nil), fakeVisuals{}, s, p, Config{
		ConnectRetries:    2,
		ConnectBackoff:    time.Millisecond,
		EnrichConcurrency: 4,
	})
}

func TestRun_CompletedWithEnrichment(t *testing.T) {
	collector := &fakeCollector{collection: testCollection()}
	resolver := &fakeResolver{vendors: map[string]string{
		"00:00:00:00:00:02": "Polycom Inc",
		"00:00:00:00:00:03": "Apple",
	}}

	o := newTestOrchestrator(collector, resolver, nil, nil)
	report := o.Run(context.Background(), RunParams{})

	require.Equal(t, domain.StatusCompleted, report.Status)
	require.NotNil(t, report.Scene)
	require.Len(t, report.Scene.Devices, 3)

	// Model string beats everything for the gateway.
	assert.Equal(t, domain.TypeFirewall, report.Scene.Devices[0].Type)
	assert.Equal(t, domain.ConfidenceExact, report.Scene.Devices[0].Confidence)

	// Keyword tier for the phone.
	assert.Equal(t, domain.TypePhone, report.Scene.Devices[1].Type)
	assert.Equal(t, "Polycom Inc", report.Scene.Devices[1].VendorName)

	// Lookup failed for device 1 (no table entry): recorded, not fatal.
	assert.NotEmpty(t, report.Errors)

	require.Len(t, report.Scene.Edges, 1)
	assert.Equal(t, domain.StatusActive, report.Scene.Edges[0].Status)
}

func TestRun_ConnectFailureIsFatal(t *testing.T) {
	boom := errors.New("connection refused")
	collector := &fakeCollector{connectErrs: []error{boom, boom, boom}}
	o := newTestOrchestrator(collector, &fakeResolver{}, nil, nil)

	report := o.Run(context.Background(), RunParams{})

	assert.Equal(t, domain.StatusFailed, report.Status)
	assert.Nil(t, report.Scene, "no partial scene on a failed run")
	require.NotEmpty(t, report.Errors)
	assert.Equal(t, domain.StepConnect, report.Errors[0].Step)
	assert.Equal(t, 0, collector.collectCalls)
}

func TestRun_ConnectRetriesTransientFailure(t *testing.T) {
	collector := &fakeCollector{
		connectErrs: []error{errors.New("transient")},
		collection:  testCollection(),
	}
	o := newTestOrchestrator(collector, &fakeResolver{}, nil, nil)

	report := o.Run(context.Background(), RunParams{})

	assert.Equal(t, domain.StatusCompleted, report.Status)
	assert.Equal(t, 2, collector.connectCalls)
}

func TestRun_CollectFailureDegradesToEmptyScene(t *testing.T) {
	collector := &fakeCollector{collectErr: errors.New("page 2 timed out")}
	o := newTestOrchestrator(collector, &fakeResolver{}, nil, nil)

	report := o.Run(context.Background(), RunParams{})

	require.Equal(t, domain.StatusCompleted, report.Status)
	require.NotNil(t, report.Scene)
	assert.Empty(t, report.Scene.Devices)
	assert.NotEmpty(t, report.Errors)
}

func TestRun_CancelledMidIdentify(t *testing.T) {
	collector := &fakeCollector{collection: testCollection()}
	resolver := &fakeResolver{delay: 200 * time.Millisecond}

	o := newTestOrchestrator(collector, resolver, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	report := o.Run(ctx, RunParams{})

	assert.Equal(t, domain.StatusCancelled, report.Status)
	assert.Nil(t, report.Scene, "no partial mutation visible after cancellation")
}

func TestRun_DeterministicOrderUnderConcurrency(t *testing.T) {
	// Staggered resolver delays shuffle completion order; device order in
	// the scene must stay the discovery order regardless.
	collector := &fakeCollector{collection: domain.RawCollection{
		Devices: []domain.RawDevice{
			{MAC: "00:00:00:00:00:0a", Name: "a"},
			{MAC: "00:00:00:00:00:0b", Name: "b"},
			{MAC: "00:00:00:00:00:0c", Name: "c"},
			{MAC: "00:00:00:00:00:0d", Name: "d"},
		},
	}}
	resolver := &fakeResolver{
		vendors: map[string]string{
			"00:00:00:00:00:0a": "VendorA",
			"00:00:00:00:00:0b": "VendorB",
			"00:00:00:00:00:0c": "VendorC",
			"00:00:00:00:00:0d": "VendorD",
		},
		delay: 5 * time.Millisecond,
	}

	o := newTestOrchestrator(collector, resolver, nil, nil)

	for i := 0; i < 5; i++ {
		report := o.Run(context.Background(), RunParams{})
		require.Equal(t, domain.StatusCompleted, report.Status)
		names := make([]string, 0, 4)
		for _, d := range report.Scene.Devices {
			names = append(names, d.Name)
		}
		assert.Equal(t, []string{"a", "b", "c", "d"}, names)
	}
}

func TestRun_EnhancedVariantAndExport(t *testing.T) {
	collector := &fakeCollector{collection: testCollection()}
	store := &fakeStore{}
	pub := &fakePublisher{}

	o := newTestOrchestrator(collector, &fakeResolver{}, store, pub)
	report := o.Run(context.Background(), RunParams{Enhanced: true})

	require.Equal(t, domain.StatusCompleted, report.Status)
	require.NotNil(t, report.Scene)
	assert.True(t, report.Scene.Enhanced)
	require.NotNil(t, report.Scene.Devices[0].Visual)

	require.Len(t, store.saved, 1)
	assert.Equal(t, domain.StatusCompleted, store.saved[0].Status)
	require.Len(t, pub.scenes, 1)
}

func TestRun_ExportStoreFailureIsItemError(t *testing.T) {
	collector := &fakeCollector{collection: testCollection()}
	store := &fakeStore{err: errors.New("disk full")}

	o := newTestOrchestrator(collector, &fakeResolver{}, store, nil)
	report := o.Run(context.Background(), RunParams{})

	assert.Equal(t, domain.StatusCompleted, report.Status)
	found := false
	for _, e := range report.Errors {
		if e.Step == domain.StepExport {
			found = true
		}
	}
	assert.True(t, found, "store failure must surface as an export item error")
}
