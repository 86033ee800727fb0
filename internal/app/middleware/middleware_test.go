package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

type reserveResult struct {
	ID string `json:"id"`
}

type reserve struct {
	key   string
	actor *auth.Actor
}

func (reserve) Key() string              { return "test.reserve" }
func (c reserve) IdempotencyKey() string { return c.key }
func (reserve) ResultPrototype() any     { return &reserveResult{} }
func (c reserve) Actor() *auth.Actor     { return c.actor }

type mapStore struct {
	mu   sync.Mutex
	recs map[string]IdempotencyRecord
}

func (s *mapStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[key]
	return rec, ok, nil
}

func (s *mapStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.Key] = rec
	return nil
}

func countingBus(calls *int, fail error) commands.Bus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[reserve, *reserveResult](bus, "test.reserve", commands.HandlerFunc[reserve, *reserveResult](
		func(context.Context, reserve) (*reserveResult, error) {
			*calls++
			if fail != nil {
				return nil, fail
			}
			return &reserveResult{ID: "r-1"}, nil
		}))
	return bus
}

func TestIdempotencyReplaysSuccess(t *testing.T) {
	calls := 0
	bus := ChainCommands(countingBus(&calls, nil), Idempotency(&mapStore{recs: map[string]IdempotencyRecord{}}, nil))

	first, err := commands.Dispatch[reserve, *reserveResult](context.Background(), bus, reserve{key: "k"})
	require.NoError(t, err)
	second, err := commands.Dispatch[reserve, *reserveResult](context.Background(), bus, reserve{key: "k"})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	bus := ChainCommands(countingBus(&calls, boom), Idempotency(&mapStore{recs: map[string]IdempotencyRecord{}}, nil))

	_, err := bus.Dispatch(context.Background(), reserve{key: "k"})
	require.ErrorIs(t, err, boom)
	_, err = bus.Dispatch(context.Background(), reserve{key: "k"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyWithoutKeyAlwaysRuns(t *testing.T) {
	calls := 0
	bus := ChainCommands(countingBus(&calls, nil), Idempotency(&mapStore{recs: map[string]IdempotencyRecord{}}, nil))
	_, _ = bus.Dispatch(context.Background(), reserve{})
	_, _ = bus.Dispatch(context.Background(), reserve{})
	assert.Equal(t, 2, calls)
}

func TestRequireActor(t *testing.T) {
	calls := 0
	bus := ChainCommands(countingBus(&calls, nil), RequireActor())

	_, err := bus.Dispatch(context.Background(), reserve{})
	require.ErrorIs(t, err, auth.ErrUnauthenticated)
	assert.Zero(t, calls)

	_, err = bus.Dispatch(context.Background(), reserve{actor: &auth.Actor{ID: "u"}})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

type fakeUnit struct {
	committed, rolledBack bool
}

func (u *fakeUnit) Listings() domainlistings.Repository { return nil }
func (u *fakeUnit) Bookings() domainbooking.Repository  { return nil }
func (u *fakeUnit) Users() domainuser.Repository        { return nil }

func (u *fakeUnit) Commit(context.Context) error {
	u.committed = true
	return nil
}

func (u *fakeUnit) Rollback(context.Context) error {
	if !u.committed {
		u.rolledBack = true
	}
	return nil
}

type fakeFactory struct{ last *fakeUnit }

func (f *fakeFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	f.last = &fakeUnit{}
	return f.last, nil
}

func TestTransactionCommitsOnSuccessAndRollsBackOnError(t *testing.T) {
	factory := &fakeFactory{}
	calls := 0
	bus := ChainCommands(countingBus(&calls, nil), Transaction(factory, nil))
	_, err := bus.Dispatch(context.Background(), reserve{})
	require.NoError(t, err)
	assert.True(t, factory.last.committed)
	assert.False(t, factory.last.rolledBack)

	bus = ChainCommands(countingBus(&calls, errors.New("nope")), Transaction(factory, nil))
	_, err = bus.Dispatch(context.Background(), reserve{})
	require.Error(t, err)
	assert.False(t, factory.last.committed)
	assert.True(t, factory.last.rolledBack)
}

func TestTransactionReusesBoundUnit(t *testing.T) {
	factory := &fakeFactory{}
	outer := &fakeUnit{}
	calls := 0
	bus := ChainCommands(countingBus(&calls, nil), Transaction(factory, nil))

	_, err := bus.Dispatch(uow.Attach(context.Background(), outer), reserve{})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Nil(t, factory.last)
	assert.False(t, outer.committed)
}

func TestChainCommandsOrderAndNilStages(t *testing.T) {
	var calls int
	var seen []string
	stage := func(name string) CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				seen = append(seen, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}

	bus := ChainCommands(countingBus(&calls, nil), stage("outer"), nil, stage("inner"))
	res, err := commands.Dispatch[reserve, *reserveResult](context.Background(), bus, reserve{})
	require.NoError(t, err)
	assert.Equal(t, "r-1", res.ID)
	assert.Equal(t, []string{"outer", "inner"}, seen)
	assert.Equal(t, 1, calls)
}
