package reservations

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/db/dbtest"
	"github.com/litcafe/backoffice/pkg/enums"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	redisclient "github.com/litcafe/backoffice/pkg/redis"
	"github.com/stretchr/testify/require"
)

// memoryDocument mimics the redis client's Get/Update pair.
type memoryDocument struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryDocument() *memoryDocument {
	return &memoryDocument{values: map[string]string{}}
}

func (m *memoryDocument) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", redisclient.ErrNil
	}
	return v, nil
}

func (m *memoryDocument) Update(_ context.Context, key string, fn func(string) (string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(m.values[key])
	if err != nil {
		return err
	}
	m.values[key] = next
	return nil
}

type backend struct {
	name string
	repo func(t *testing.T) Repository
}

func backends() []backend {
	return []backend{
		{name: "gorm", repo: func(t *testing.T) Repository {
			return NewGormRepository(dbtest.New(t).DB())
		}},
		{name: "redis", repo: func(t *testing.T) Repository {
			repo, err := NewRedisRepository(newMemoryDocument(), "lit:reservations")
			require.NoError(t, err)
			return repo
		}},
	}
}

func intPtr(v int) *int { return &v }

func validForm(name string) Form {
	return Form{
		Name:  name,
		Email: name + "@example.com",
		Phone: "55 1234 5678",
		Date:  "2026-11-20",
		Time:  "19:30",
	}
}

func newService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	require.NoError(t, err)
	clock := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func TestReservationFlow(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			svc := newService(t, b.repo(t))

			first, err := svc.Create(ctx, validForm("maria"))
			require.NoError(t, err)
			require.Equal(t, enums.ReservationStatusPending, first.Status)
			require.Equal(t, 1, first.Guests)

			form := validForm("jorge")
			form.Guests = intPtr(4)
			second, err := svc.Create(ctx, form)
			require.NoError(t, err)
			require.Equal(t, 4, second.Guests)

			seq, err := svc.List(ctx, Filter{})
			require.NoError(t, err)
			all := slices.Collect(seq)
			require.Len(t, all, 2)
			require.Equal(t, second.ID, all[0].ID)

			require.NoError(t, svc.Accept(ctx, first.ID))

			pending := enums.ReservationStatusPending
			seq, err = svc.List(ctx, Filter{Status: &pending})
			require.NoError(t, err)
			onlyPending := slices.Collect(seq)
			require.Len(t, onlyPending, 1)
			require.Equal(t, second.ID, onlyPending[0].ID)

			err = svc.Reject(ctx, first.ID)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

			require.NoError(t, svc.Accept(ctx, uuid.New()))

			stats, err := svc.Stats(ctx)
			require.NoError(t, err)
			require.Equal(t, Counts{Total: 2, Pending: 1, Accepted: 1}, stats)
		})
	}
}

func TestCreateRejectsInvalidEmailOnly(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			svc := newService(t, b.repo(t))

			form := validForm("ana")
			form.Email = "ana-at-example"
			_, err := svc.Create(ctx, form)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
			details := pkgerrors.As(err).Details().(map[string]string)
			require.Len(t, details, 1)
			require.Contains(t, details, "email")

			seq, err := svc.List(ctx, Filter{})
			require.NoError(t, err)
			require.Empty(t, slices.Collect(seq))
		})
	}
}

func TestCreateValidatesEveryField(t *testing.T) {
	svc := newService(t, backends()[1].repo(t))
	_, err := svc.Create(context.Background(), Form{Phone: "123-45", Date: "20/11/2026", Time: "7pm", Guests: intPtr(0)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details := pkgerrors.As(err).Details().(map[string]string)
	for _, field := range []string{"name", "email", "phone", "date", "time", "guests"} {
		require.Contains(t, details, field)
	}
}

func TestListSearchAndRestart(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, backends()[1].repo(t))

	_, err := svc.Create(ctx, validForm("Lucia"))
	require.NoError(t, err)
	other := validForm("pedro")
	other.Phone = "33 9999 0000"
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	seq, err := svc.List(ctx, Filter{Query: "LUC"})
	require.NoError(t, err)
	require.Len(t, slices.Collect(seq), 1)
	require.Len(t, slices.Collect(seq), 1)

	seq, err = svc.List(ctx, Filter{Query: "9999"})
	require.NoError(t, err)
	found := slices.Collect(seq)
	require.Len(t, found, 1)
	require.Equal(t, "pedro", found[0].Name)

	seq, err = svc.List(ctx, Filter{})
	require.NoError(t, err)
	n := 0
	for range seq {
		n++
		break
	}
	require.Equal(t, 1, n)
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (r *recordingBroadcaster) Broadcast(msg []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingBroadcaster) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func TestWatcherBroadcastsOnlyChanges(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, backends()[1].repo(t))
	out := &recordingBroadcaster{}
	watcher, err := NewWatcher(svc, time.Second, out, nil)
	require.NoError(t, err)
	require.Nil(t, watcher.Latest())

	changed, err := watcher.Poll(ctx)
	require.NoError(t, err)
	require.True(t, changed)
	require.Contains(t, string(watcher.Latest()), `"reservations":[]`)

	changed, err = watcher.Poll(ctx)
	require.NoError(t, err)
	require.False(t, changed)

	_, err = svc.Create(ctx, validForm("sofia"))
	require.NoError(t, err)
	changed, err = watcher.Poll(ctx)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, 2, out.count())
	require.Contains(t, string(watcher.Latest()), `"pending":1`)
}

func TestWatcherRunStopsOnCancel(t *testing.T) {
	svc := newService(t, backends()[1].repo(t))
	out := &recordingBroadcaster{}
	watcher, err := NewWatcher(svc, 10*time.Millisecond, out, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	require.Eventually(t, func() bool { return out.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
