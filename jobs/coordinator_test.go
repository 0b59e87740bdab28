package jobs

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/geniuslabs/voiceapi/database"
	apperrors "github.com/geniuslabs/voiceapi/errors"
	"github.com/geniuslabs/voiceapi/logger"
	"github.com/geniuslabs/voiceapi/resilience"
	"github.com/geniuslabs/voiceapi/transcription"
)

type fakeBatches struct {
	mu              sync.Mutex
	batches         map[uuid.UUID]*database.Batch
	progressWrites  [][2]int
	finalStatus     database.BatchStatus
	finalCompleted  int
	finalFailed     int
	finalCost       float64
	finalized       bool
	markFailedCalls int
	getErr          error
	progressErr     error
	markFailedErr   error
}

func newFakeBatches() *fakeBatches {
	return &fakeBatches{batches: map[uuid.UUID]*database.Batch{}}
}

func (f *fakeBatches) add(b *database.Batch) *database.Batch {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	f.batches[b.ID] = b
	return b
}

func (f *fakeBatches) Get(_ context.Context, id uuid.UUID) (*database.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	b, ok := f.batches[id]
	if !ok {
		return nil, apperrors.NotFound("batch", id.String())
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBatches) UpdateProgress(_ context.Context, id uuid.UUID, completed, failed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.progressErr != nil {
		return f.progressErr
	}
	f.progressWrites = append(f.progressWrites, [2]int{completed, failed})
	if b, ok := f.batches[id]; ok {
		b.CompletedCount = completed
		b.FailedCount = failed
	}
	return nil
}

func (f *fakeBatches) Finalize(_ context.Context, id uuid.UUID, status database.BatchStatus, completed, failed int, costUSD float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalized = true
	f.finalStatus = status
	f.finalCompleted = completed
	f.finalFailed = failed
	f.finalCost = costUSD
	if b, ok := f.batches[id]; ok {
		b.Status = status
		b.CompletedCount = completed
		b.FailedCount = failed
	}
	return nil
}

func (f *fakeBatches) MarkFailed(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markFailedCalls++
	if f.markFailedErr != nil {
		return f.markFailedErr
	}
	if b, ok := f.batches[id]; ok {
		b.Status = database.BatchFailed
	}
	return nil
}

func newTestCoordinator(recs *fakeRecordings, batches *fakeBatches, tr Transcriber) *Coordinator {
	log := logger.NewDefault("test")
	proc := NewProcessor(recs, tr, log)
	return NewCoordinator(recs, batches, proc, resilience.NewLimiter(3), transcription.DefaultRatePerMinute, log)
}

func seedBatchRecordings(recs *fakeRecordings, batchID uuid.UUID, refs ...string) {
	for _, ref := range refs {
		r := ref
		recs.add(&database.Recording{
			BatchID:  &batchID,
			Status:   database.RecordingProcessing,
			AudioRef: &r,
			Project:  &database.Project{Language: "es"},
		})
	}
}

func TestCoordinator_PartialBatch(t *testing.T) {
	recs := newFakeRecordings()
	batches := newFakeBatches()
	batch := batches.add(&database.Batch{Status: database.BatchProcessing, TotalCount: 5})

	seedBatchRecordings(recs, batch.ID,
		"projects/p/ok-1.webm", "projects/p/ok-2.webm", "projects/p/ok-3.webm",
		"projects/p/bad-1.webm", "projects/p/bad-2.webm")

	tr := &fakeTranscriber{fn: func(ref string) (*transcription.Result, error) {
		if strings.Contains(ref, "bad") {
			return nil, errors.New("provider exhausted retries")
		}
		return &transcription.Result{Text: "ok", Language: "es", Duration: 30}, nil
	}}

	coord := newTestCoordinator(recs, batches, tr)
	if err := coord.RunBatch(context.Background(), batch.ID); err != nil {
		t.Fatalf("run batch: %v", err)
	}

	if batches.finalStatus != database.BatchPartial {
		t.Errorf("expected partial, got %s", batches.finalStatus)
	}
	if batches.finalCompleted != 3 || batches.finalFailed != 2 {
		t.Errorf("expected 3/2, got %d/%d", batches.finalCompleted, batches.finalFailed)
	}

	// 3 completed x 30s = 90s at $0.006/min.
	if batches.finalCost != 0.009 {
		t.Errorf("expected cost 0.009, got %v", batches.finalCost)
	}

	// Counters persisted after each recording, monotonically.
	if len(batches.progressWrites) != 5 {
		t.Fatalf("expected 5 progress writes, got %d", len(batches.progressWrites))
	}
	prev := [2]int{0, 0}
	for _, w := range batches.progressWrites {
		if w[0] < prev[0] || w[1] < prev[1] {
			t.Errorf("counters went backwards: %v after %v", w, prev)
		}
		if w[0]+w[1] > 5 {
			t.Errorf("counters exceed batch size: %v", w)
		}
		prev = w
	}
}

func TestCoordinator_EmptyBatchFinalizesCompleted(t *testing.T) {
	recs := newFakeRecordings()
	batches := newFakeBatches()
	batch := batches.add(&database.Batch{Status: database.BatchProcessing})

	tr := &fakeTranscriber{fn: func(string) (*transcription.Result, error) {
		t.Fatal("no provider calls expected for an empty batch")
		return nil, nil
	}}

	coord := newTestCoordinator(recs, batches, tr)
	if err := coord.RunBatch(context.Background(), batch.ID); err != nil {
		t.Fatalf("run batch: %v", err)
	}

	if !batches.finalized || batches.finalStatus != database.BatchCompleted {
		t.Errorf("expected immediate completed finalization, got %+v", batches)
	}
	if tr.calls != 0 {
		t.Errorf("expected 0 provider calls, got %d", tr.calls)
	}
}

func TestCoordinator_AllFailedBatch(t *testing.T) {
	recs := newFakeRecordings()
	batches := newFakeBatches()
	batch := batches.add(&database.Batch{Status: database.BatchProcessing, TotalCount: 2})

	seedBatchRecordings(recs, batch.ID, "projects/p/bad-1.webm", "projects/p/bad-2.webm")

	tr := &fakeTranscriber{fn: func(string) (*transcription.Result, error) {
		return nil, errors.New("down")
	}}

	coord := newTestCoordinator(recs, batches, tr)
	if err := coord.RunBatch(context.Background(), batch.ID); err != nil {
		t.Fatalf("run batch: %v", err)
	}

	if batches.finalStatus != database.BatchFailed {
		t.Errorf("expected failed, not partial, got %s", batches.finalStatus)
	}
	if batches.finalCost != 0 {
		t.Errorf("expected zero cost, got %v", batches.finalCost)
	}
}

func TestCoordinator_AllCompletedBatch(t *testing.T) {
	recs := newFakeRecordings()
	batches := newFakeBatches()
	batch := batches.add(&database.Batch{Status: database.BatchProcessing, TotalCount: 2})

	seedBatchRecordings(recs, batch.ID, "projects/p/a.webm", "projects/p/b.webm")

	tr := &fakeTranscriber{fn: func(string) (*transcription.Result, error) {
		return &transcription.Result{Text: "ok", Duration: 60}, nil
	}}

	coord := newTestCoordinator(recs, batches, tr)
	if err := coord.RunBatch(context.Background(), batch.ID); err != nil {
		t.Fatalf("run batch: %v", err)
	}

	if batches.finalStatus != database.BatchCompleted {
		t.Errorf("expected completed, got %s", batches.finalStatus)
	}
	// 2 x 60s = 2 minutes at $0.006/min.
	if batches.finalCost != 0.012 {
		t.Errorf("expected cost 0.012, got %v", batches.finalCost)
	}
}

func TestCoordinator_OrchestrationFailureMarksBatchFailed(t *testing.T) {
	recs := newFakeRecordings()
	batches := newFakeBatches()
	batch := batches.add(&database.Batch{Status: database.BatchProcessing})
	seedBatchRecordings(recs, batch.ID, "projects/p/a.webm")
	batches.progressErr = errors.New("datastore unavailable")

	tr := &fakeTranscriber{fn: func(string) (*transcription.Result, error) {
		return &transcription.Result{Text: "ok", Duration: 10}, nil
	}}

	coord := newTestCoordinator(recs, batches, tr)
	err := coord.RunBatch(context.Background(), batch.ID)
	if err == nil {
		t.Fatal("expected orchestration error")
	}
	if batches.markFailedCalls != 1 {
		t.Errorf("expected best-effort mark-failed, got %d calls", batches.markFailedCalls)
	}
}

func TestCoordinator_MarkFailedFailureIsOnlyLogged(t *testing.T) {
	recs := newFakeRecordings()
	batches := newFakeBatches()
	batch := batches.add(&database.Batch{Status: database.BatchProcessing})
	recs.listErr = errors.New("datastore unavailable")
	batches.markFailedErr = errors.New("still unavailable")

	coord := newTestCoordinator(recs, batches, &fakeTranscriber{})

	// Must not panic; the original error is still returned.
	err := coord.RunBatch(context.Background(), batch.ID)
	if err == nil || !strings.Contains(err.Error(), "datastore unavailable") {
		t.Errorf("expected original orchestration error, got %v", err)
	}
}

func TestCoordinator_ResumesCountersFromBatch(t *testing.T) {
	recs := newFakeRecordings()
	batches := newFakeBatches()
	// A prior partial run already tallied 2 completed and 1 failed.
	batch := batches.add(&database.Batch{
		Status:         database.BatchProcessing,
		TotalCount:     5,
		CompletedCount: 2,
		FailedCount:    1,
	})
	seedBatchRecordings(recs, batch.ID, "projects/p/a.webm", "projects/p/b.webm")

	tr := &fakeTranscriber{fn: func(string) (*transcription.Result, error) {
		return &transcription.Result{Text: "ok", Duration: 30}, nil
	}}

	coord := newTestCoordinator(recs, batches, tr)
	if err := coord.RunBatch(context.Background(), batch.ID); err != nil {
		t.Fatalf("run batch: %v", err)
	}

	if batches.finalCompleted != 4 || batches.finalFailed != 1 {
		t.Errorf("expected 4/1, got %d/%d", batches.finalCompleted, batches.finalFailed)
	}
	if batches.finalStatus != database.BatchPartial {
		t.Errorf("expected partial, got %s", batches.finalStatus)
	}
}
