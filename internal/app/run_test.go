package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/systemdevart/random-coffee/internal/config"
	"github.com/systemdevart/random-coffee/internal/domain"
)

type fakeDirectory struct {
	members []domain.Member
	err     error
}

func (f *fakeDirectory) ListMembers(context.Context, string) ([]domain.Member, error) {
	return f.members, f.err
}

type fakeMessenger struct {
	posts   []string
	dms     []string
	postErr error
	dmErr   error
}

func (f *fakeMessenger) PostMessage(_ context.Context, _, text string) error {
	if f.postErr != nil {
		return f.postErr
	}
	f.posts = append(f.posts, text)
	return nil
}

func (f *fakeMessenger) SendDirectMessage(_ context.Context, _, text string) error {
	if f.dmErr != nil {
		return f.dmErr
	}
	f.dms = append(f.dms, text)
	return nil
}

type fakeRepo struct {
	recent   map[string]bool
	recorded []domain.Group
}

func (f *fakeRepo) RecordRun(_ context.Context, _ string, _ time.Time, groups []domain.Group) error {
	f.recorded = append(f.recorded, groups...)
	return nil
}

func (f *fakeRepo) RecentPairs(context.Context, string, time.Time) (map[string]bool, error) {
	return f.recent, nil
}

func (f *fakeRepo) Close() error { return nil }

func testApp(dir Directory, msg Messenger) *App {
	return &App{
		cfg: config.Config{
			Channel:        "#random-coffee",
			ErrorRecipient: "@admin",
			HistoryDays:    30,
		},
		log:       zap.NewNop(),
		directory: dir,
		messenger: msg,
		rng:       rand.New(rand.NewPCG(7, 7)),
		now:       func() time.Time { return time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC) },
	}
}

func makeHumans(n int) []domain.Member {
	members := make([]domain.Member, n)
	for i := range members {
		members[i] = domain.Member{
			ID:   "U" + string(rune('A'+i)),
			Name: "User " + string(rune('A'+i)),
		}
	}
	return members
}

func TestRunPairing_Success(t *testing.T) {
	members := append(makeHumans(4),
		domain.Member{ID: "UBOT", Name: "Coffee Bot", IsBot: true},
		domain.Member{ID: "UADM", Name: "Workspace Admin", IsAdmin: true},
	)
	msg := &fakeMessenger{}
	a := testApp(&fakeDirectory{members: members}, msg)

	a.runPairing(context.Background())

	if len(msg.posts) != 1 {
		t.Fatalf("want 1 announcement, got %d", len(msg.posts))
	}
	if len(msg.dms) != 0 {
		t.Fatalf("successful run must not notify, got %v", msg.dms)
	}
	post := msg.posts[0]
	if !strings.Contains(post, "1. ") || !strings.Contains(post, "2. ") {
		t.Fatalf("announcement missing numbered groups:\n%s", post)
	}
	for _, excluded := range []string{"UBOT", "UADM"} {
		if strings.Contains(post, excluded) {
			t.Fatalf("filtered member %s leaked into announcement:\n%s", excluded, post)
		}
	}
}

func TestRunPairing_RecordsHistoryAndAvoidsRecentPairs(t *testing.T) {
	repo := &fakeRepo{recent: map[string]bool{
		domain.PairKey("UA", "UB"): true,
		domain.PairKey("UC", "UD"): true,
	}}
	msg := &fakeMessenger{}
	a := testApp(&fakeDirectory{members: makeHumans(4)}, msg)
	a.repo = repo

	a.runPairing(context.Background())

	if len(msg.posts) != 1 {
		t.Fatalf("want 1 announcement, got %d", len(msg.posts))
	}
	if len(repo.recorded) != 2 {
		t.Fatalf("want 2 groups recorded, got %d", len(repo.recorded))
	}
	for _, g := range repo.recorded {
		for _, k := range g.Keys() {
			if repo.recent[k] {
				t.Fatalf("blocked pair %s chosen despite an available alternative", k)
			}
		}
	}
}

func TestRunPairing_FetchFailure(t *testing.T) {
	msg := &fakeMessenger{}
	a := testApp(&fakeDirectory{err: errors.New("invalid_auth")}, msg)

	a.runPairing(context.Background())

	if len(msg.posts) != 0 {
		t.Fatalf("no announcement must be posted on fetch failure, got %v", msg.posts)
	}
	if len(msg.dms) != 1 {
		t.Fatalf("want exactly one error notification, got %d", len(msg.dms))
	}
	dm := msg.dms[0]
	if !strings.Contains(dm, "Random Coffee Bot Error") || !strings.Contains(dm, "invalid_auth") {
		t.Fatalf("notification missing error detail:\n%s", dm)
	}
}

func TestRunPairing_InsufficientMembers(t *testing.T) {
	members := []domain.Member{
		{ID: "UA", Name: "Alice"},
		{ID: "UBOT", Name: "Coffee Bot", IsBot: true},
	}
	msg := &fakeMessenger{}
	a := testApp(&fakeDirectory{members: members}, msg)

	a.runPairing(context.Background())

	if len(msg.posts) != 0 {
		t.Fatalf("no announcement with one eligible member, got %v", msg.posts)
	}
	if len(msg.dms) != 1 || !strings.Contains(msg.dms[0], "not enough members") {
		t.Fatalf("want an insufficient-members notification, got %v", msg.dms)
	}
}

func TestRunPairing_PostFailureNotifies(t *testing.T) {
	msg := &fakeMessenger{postErr: errors.New("not_in_channel")}
	a := testApp(&fakeDirectory{members: makeHumans(4)}, msg)

	a.runPairing(context.Background())

	if len(msg.dms) != 1 || !strings.Contains(msg.dms[0], "not_in_channel") {
		t.Fatalf("want a post-failure notification, got %v", msg.dms)
	}
}

func TestRunPairing_NotificationFailureIsSwallowed(t *testing.T) {
	msg := &fakeMessenger{dmErr: errors.New("dm blocked")}
	a := testApp(&fakeDirectory{err: errors.New("boom")}, msg)

	// Must not panic or propagate; the scheduler loop stays alive.
	a.runPairing(context.Background())
}
