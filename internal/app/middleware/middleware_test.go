package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainavailability "stayhub/internal/domain/availability"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
)

type result struct {
	ID string `json:"id"`
}

type bookCommand struct {
	key     string
	session auth.Session
}

func (bookCommand) Key() string              { return "test.book" }
func (c bookCommand) IdempotencyKey() string { return c.key }
func (bookCommand) ResultPrototype() any     { return &result{} }
func (c bookCommand) Actor() auth.Session    { return c.session }
func (bookCommand) RequiredRole() auth.Role  { return auth.RoleHost }

type memStore struct {
	mu   sync.Mutex
	recs map[string]IdempotencyRecord
}

func (s *memStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[key]
	return rec, ok, nil
}

func (s *memStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recs == nil {
		s.recs = map[string]IdempotencyRecord{}
	}
	s.recs[rec.Key] = rec
	return nil
}

type countingBus struct {
	calls int
	err   error
}

func (b *countingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return result{ID: "bk-1"}, nil
}

func TestIdempotencyReplaysResult(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Idempotency(&memStore{}, nil))
	ctx := context.Background()

	first, err := commands.Dispatch[bookCommand, result](ctx, bus, bookCommand{key: "k1"})
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	second, err := commands.Dispatch[bookCommand, result](ctx, bus, bookCommand{key: "k1"})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("handler calls: got %d, want 1", base.calls)
	}
	if first != second {
		t.Fatalf("replayed result differs: %+v vs %+v", first, second)
	}
	if _, err := commands.Dispatch[bookCommand, result](ctx, bus, bookCommand{}); err != nil {
		t.Fatalf("keyless dispatch: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("keyless command must reach the handler, calls=%d", base.calls)
	}
}

func TestIdempotencyDoesNotRecordFailures(t *testing.T) {
	base := &countingBus{err: errors.New("boom")}
	store := &memStore{}
	bus := ChainCommands(base, Idempotency(store, nil))

	for i := 0; i < 2; i++ {
		if _, err := bus.Dispatch(context.Background(), bookCommand{key: "k1"}); err == nil {
			t.Fatal("expected error")
		}
	}
	if base.calls != 2 {
		t.Fatalf("failed commands must be retried, calls=%d", base.calls)
	}
	if len(store.recs) != 0 {
		t.Fatalf("unexpected records %v", store.recs)
	}
}

func TestSessionAuthorizer(t *testing.T) {
	base := &countingBus{}
	bus := ChainCommands(base, Authorization(SessionAuthorizer{}))
	guest, _ := auth.NewSession("g", []string{"guest"})
	host, _ := auth.NewSession("h", []string{"host"})

	if _, err := bus.Dispatch(context.Background(), bookCommand{session: guest}); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := bus.Dispatch(context.Background(), bookCommand{}); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := bus.Dispatch(context.Background(), bookCommand{session: host}); err != nil {
		t.Fatalf("host dispatch: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("calls: got %d, want 1", base.calls)
	}
}

type fakeUnit struct {
	committed  bool
	rolledBack bool
}

func (u *fakeUnit) Listings() domainlistings.ListingRepository  { return nil }
func (u *fakeUnit) Availability() domainavailability.Repository { return nil }
func (u *fakeUnit) Booking() domainbooking.Repository           { return nil }
func (u *fakeUnit) Commit(context.Context) error                { u.committed = true; return nil }
func (u *fakeUnit) Rollback(context.Context) error              { u.rolledBack = true; return nil }

type fakeFactory struct{ unit *fakeUnit }

func (f *fakeFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	f.unit = &fakeUnit{}
	return f.unit, nil
}

type unitCheckingBus struct {
	err error
}

func (b unitCheckingBus) Dispatch(ctx context.Context, _ commands.Command) (any, error) {
	if _, ok := uow.FromContext(ctx); !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	return nil, b.err
}

func TestTransactionCommitsAndRollsBack(t *testing.T) {
	factory := &fakeFactory{}
	bus := ChainCommands(unitCheckingBus{}, Transaction(factory, nil))
	if _, err := bus.Dispatch(context.Background(), bookCommand{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !factory.unit.committed || factory.unit.rolledBack {
		t.Fatalf("expected commit only, got %+v", factory.unit)
	}

	bus = ChainCommands(unitCheckingBus{err: errors.New("fail")}, Transaction(factory, nil))
	if _, err := bus.Dispatch(context.Background(), bookCommand{}); err == nil {
		t.Fatal("expected error")
	}
	if factory.unit.committed || !factory.unit.rolledBack {
		t.Fatalf("expected rollback only, got %+v", factory.unit)
	}
}

type compensatingBus struct {
	err   error
	undos *int
}

func (b compensatingBus) Dispatch(ctx context.Context, _ commands.Command) (any, error) {
	if !uow.OnRollback(ctx, func(context.Context) { *b.undos++ }) {
		return nil, errors.New("no compensation scope")
	}
	return nil, b.err
}

type failingCommitFactory struct{ fakeFactory }

func (f *failingCommitFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, _ := f.fakeFactory.Begin(ctx, opts)
	return failingCommitUnit{unit.(*fakeUnit)}, nil
}

type failingCommitUnit struct{ *fakeUnit }

func (failingCommitUnit) Commit(context.Context) error { return errors.New("commit failed") }

func TestTransactionRunsCompensationsOnlyWithoutCommit(t *testing.T) {
	undos := 0
	bus := ChainCommands(compensatingBus{undos: &undos}, Transaction(&fakeFactory{}, nil))
	if _, err := bus.Dispatch(context.Background(), bookCommand{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if undos != 0 {
		t.Fatalf("committed unit ran %d compensations", undos)
	}

	bus = ChainCommands(compensatingBus{err: errors.New("fail"), undos: &undos}, Transaction(&fakeFactory{}, nil))
	if _, err := bus.Dispatch(context.Background(), bookCommand{}); err == nil {
		t.Fatal("expected error")
	}
	if undos != 1 {
		t.Fatalf("handler failure: got %d compensations, want 1", undos)
	}

	factory := &failingCommitFactory{}
	bus = ChainCommands(compensatingBus{undos: &undos}, Transaction(factory, nil))
	if _, err := bus.Dispatch(context.Background(), bookCommand{}); err == nil {
		t.Fatal("expected commit error")
	}
	if undos != 2 || !factory.unit.rolledBack {
		t.Fatalf("commit failure: got %d compensations, rolled back %v", undos, factory.unit.rolledBack)
	}
}
