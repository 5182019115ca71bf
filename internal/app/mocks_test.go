package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

// --- Mock implementations ---

// mockBatcher records every committed batch. commitFn decides the outcome
// of commit number n (1-based).
type mockBatcher struct {
	maxOps   int
	commitFn func(n int, ids []string) error

	mu        sync.Mutex
	created   int
	committed [][]string
}

func newMockBatcher() *mockBatcher {
	return &mockBatcher{maxOps: 500}
}

func (m *mockBatcher) NewBatch() domain.WriteBatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
	return &mockBatch{owner: m}
}

func (m *mockBatcher) MaxBatchOps() int { return m.maxOps }

func (m *mockBatcher) chunkSizes() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sizes := make([]int, len(m.committed))
	for i, c := range m.committed {
		sizes[i] = len(c)
	}
	return sizes
}

type mockBatch struct {
	owner *mockBatcher
	ids   []string
}

func (b *mockBatch) Delete(id string) { b.ids = append(b.ids, id) }
func (b *mockBatch) Len() int         { return len(b.ids) }

func (b *mockBatch) Commit(_ context.Context) error {
	b.owner.mu.Lock()
	n := len(b.owner.committed) + 1
	fn := b.owner.commitFn
	b.owner.mu.Unlock()

	if fn != nil {
		if err := fn(n, b.ids); err != nil {
			return err
		}
	}

	b.owner.mu.Lock()
	defer b.owner.mu.Unlock()
	b.owner.committed = append(b.owner.committed, b.ids)
	return nil
}

type mockAuditor struct {
	recordFn func(ctx context.Context, rec domain.DeletionRecord) error
	records  []domain.DeletionRecord
}

func (m *mockAuditor) RecordDeletion(ctx context.Context, rec domain.DeletionRecord) error {
	m.records = append(m.records, rec)
	if m.recordFn != nil {
		return m.recordFn(ctx, rec)
	}
	return nil
}

type mockDeleteMetrics struct {
	chunks, spins, failures, auditFailures int
	durations                              []time.Duration
}

func (m *mockDeleteMetrics) ChunkCommitted(size int) {
	m.chunks++
	m.spins += size
}
func (m *mockDeleteMetrics) CommitFailed()                         { m.failures++ }
func (m *mockDeleteMetrics) AuditFailed()                          { m.auditFailures++ }
func (m *mockDeleteMetrics) ObserveDeleteDuration(d time.Duration) { m.durations = append(m.durations, d) }

type mockPrincipalRepo struct {
	getByIDFn    func(ctx context.Context, id string) (*domain.Principal, error)
	upsertFn     func(ctx context.Context, id, displayName string) (*domain.Principal, error)
	grantAdminFn func(ctx context.Context, id string, revokedAt time.Time) (*domain.Principal, error)

	mu       sync.Mutex
	getCalls int
}

func (m *mockPrincipalRepo) GetByID(ctx context.Context, id string) (*domain.Principal, error) {
	m.mu.Lock()
	m.getCalls++
	m.mu.Unlock()
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockPrincipalRepo) Upsert(ctx context.Context, id, displayName string) (*domain.Principal, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, id, displayName)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockPrincipalRepo) GrantAdmin(ctx context.Context, id string, revokedAt time.Time) (*domain.Principal, error) {
	if m.grantAdminFn != nil {
		return m.grantAdminFn(ctx, id, revokedAt)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockPrincipalRepo) lookups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

type mockCodec struct {
	issueFn  func(p *domain.Principal) (string, error)
	verifyFn func(token string) (*domain.Claims, error)
}

func (m *mockCodec) Issue(p *domain.Principal) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(p)
	}
	return "", fmt.Errorf("not implemented")
}

func (m *mockCodec) Verify(token string) (*domain.Claims, error) {
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return nil, fmt.Errorf("not implemented")
}

type mockPrizeRepo struct {
	listFn func(ctx context.Context) ([]domain.Prize, error)
}

func (m *mockPrizeRepo) List(ctx context.Context) ([]domain.Prize, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockPrizeRepo) Upsert(context.Context, domain.Prize) error { return nil }
