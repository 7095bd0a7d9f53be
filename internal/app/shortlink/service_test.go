package shortlink_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"clck.local/internal/app/shortlink"
	"clck.local/internal/app/shortlink/repo"
	"github.com/google/uuid"
)

// fakeClock 是可手动拨动的时钟。
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingNotifier 录制通知调用，供断言。
type recordingNotifier struct {
	mu           sync.Mutex
	expired      []string
	limitReached []string
}

func (n *recordingNotifier) LinkExpired(_ uuid.UUID, shortCode, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expired = append(n.expired, shortCode)
}

func (n *recordingNotifier) LinkLimitReached(_ uuid.UUID, shortCode, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.limitReached = append(n.limitReached, shortCode)
}

func (n *recordingNotifier) expiredCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.expired)
}

func (n *recordingNotifier) limitCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.limitReached)
}

// stubGenerator 永远返回同一个短码，用来打冲突/耗尽路径。
type stubGenerator struct {
	code string
}

func (g *stubGenerator) Generate(string, uuid.UUID) string {
	return g.code
}

func setupService(t *testing.T) (*shortlink.Service, *repo.LinksRepo, *recordingNotifier, *fakeClock) {
	t.Helper()

	store := repo.NewLinksRepo()
	gen, err := shortlink.NewGenerator(6)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	notifier := &recordingNotifier{}
	clock := newFakeClock()

	svc, err := shortlink.NewService(store, gen, notifier, 24*time.Hour, 10, shortlink.WithNow(clock.Now))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store, notifier, clock
}

func TestCreate_DefaultLimit(t *testing.T) {
	svc, _, _, clock := setupService(t)
	owner := uuid.New()

	link, err := svc.Create("https://example.com", owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if link.ClickLimit != 10 {
		t.Fatalf("ClickLimit: got %d, want default 10", link.ClickLimit)
	}
	if len(link.ShortCode) != 6 {
		t.Fatalf("ShortCode %q: got length %d, want 6", link.ShortCode, len(link.ShortCode))
	}
	if want := clock.Now().Add(24 * time.Hour); !link.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt: got %v, want %v", link.ExpiresAt, want)
	}
}

func TestCreate_RejectsBadInput(t *testing.T) {
	svc, store, _, _ := setupService(t)
	owner := uuid.New()

	tests := []struct {
		name string
		fn   func() error
	}{
		{"empty url", func() error {
			_, err := svc.Create("", owner)
			return err
		}},
		{"ftp scheme", func() error {
			_, err := svc.Create("ftp://example.com", owner)
			return err
		}},
		{"zero limit", func() error {
			_, err := svc.CreateWithLimit("https://example.com", owner, 0)
			return err
		}},
		{"negative limit", func() error {
			_, err := svc.CreateWithLimit("https://example.com", owner, -1)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, shortlink.ErrInvalidURL) {
				t.Fatalf("got %v, want ErrInvalidURL", err)
			}
		})
	}

	// 失败的 create 不能在 store 里留下任何痕迹
	if n := len(store.All()); n != 0 {
		t.Fatalf("store has %d records after rejected creates, want 0", n)
	}
}

func TestCreate_DistinctCodesPerUser(t *testing.T) {
	svc, _, _, _ := setupService(t)

	a, err := svc.Create("https://example.com", uuid.New())
	if err != nil {
		t.Fatalf("Create A: %v", err)
	}
	b, err := svc.Create("https://example.com", uuid.New())
	if err != nil {
		t.Fatalf("Create B: %v", err)
	}
	if a.ShortCode == b.ShortCode {
		t.Fatalf("two users shortening the same URL got the same code %q", a.ShortCode)
	}
}

func TestCreate_CodeExhausted(t *testing.T) {
	store := repo.NewLinksRepo()
	notifier := &recordingNotifier{}
	clock := newFakeClock()
	svc, err := shortlink.NewService(store, &stubGenerator{code: "stuck1"}, notifier, 24*time.Hour, 10, shortlink.WithNow(clock.Now))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	owner := uuid.New()

	if _, err := svc.Create("https://example.com", owner); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	// 生成器卡死在同一个短码上：重试全部撞码
	if _, err := svc.Create("https://example.org", owner); !errors.Is(err, shortlink.ErrCodeExhausted) {
		t.Fatalf("got %v, want ErrCodeExhausted", err)
	}
}

func TestResolve_RoundTrip(t *testing.T) {
	svc, _, _, _ := setupService(t)
	owner := uuid.New()

	link, err := svc.Create("https://example.com/path?q=1", owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	url, err := svc.Resolve(link.ShortCode)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if url != "https://example.com/path?q=1" {
		t.Fatalf("url: got %q, want the one passed to Create", url)
	}
}

func TestResolve_NotFound(t *testing.T) {
	svc, _, _, _ := setupService(t)

	if _, err := svc.Resolve("nosuch"); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

// 场景：limit=3 的链接 resolve 三次都成功，第四次 LimitReached，链接转入不可用。
func TestResolve_ExhaustsQuota(t *testing.T) {
	svc, _, notifier, clock := setupService(t)
	owner := uuid.New()

	link, err := svc.CreateWithLimit("https://example.com", owner, 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 3; i++ {
		url, err := svc.Resolve(link.ShortCode)
		if err != nil {
			t.Fatalf("Resolve #%d: %v", i+1, err)
		}
		if url != "https://example.com" {
			t.Fatalf("Resolve #%d: got %q", i+1, url)
		}
	}

	if _, err := svc.Resolve(link.ShortCode); !errors.Is(err, shortlink.ErrLimitReached) {
		t.Fatalf("fourth resolve: got %v, want ErrLimitReached", err)
	}
	if notifier.limitCount() != 1 {
		t.Fatalf("limit notifications: got %d, want 1", notifier.limitCount())
	}

	got, err := svc.Info(link.ShortCode)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if got.ClickCount != 3 {
		t.Fatalf("ClickCount: got %d, want 3", got.ClickCount)
	}
	if got.IsActive(clock.Now()) {
		t.Fatal("link still active after quota exhausted")
	}
}

func TestResolve_SingleClickLimit(t *testing.T) {
	svc, _, _, _ := setupService(t)
	owner := uuid.New()

	link, err := svc.CreateWithLimit("https://example.com", owner, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Resolve(link.ShortCode); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if _, err := svc.Resolve(link.ShortCode); !errors.Is(err, shortlink.ErrLimitReached) {
		t.Fatalf("second resolve: got %v, want ErrLimitReached", err)
	}
}

// 场景：过期链接 resolve 失败、发一次过期通知、cleanup 回收并返回 1。
func TestResolve_ExpiredThenReaped(t *testing.T) {
	svc, _, notifier, clock := setupService(t)
	owner := uuid.New()

	link, err := svc.Create("https://example.com", owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	clock.Advance(25 * time.Hour)

	if _, err := svc.Resolve(link.ShortCode); !errors.Is(err, shortlink.ErrExpired) {
		t.Fatalf("got %v, want ErrExpired", err)
	}
	if notifier.expiredCount() != 1 {
		t.Fatalf("expired notifications: got %d, want 1", notifier.expiredCount())
	}

	if removed := svc.Cleanup(); removed != 1 {
		t.Fatalf("Cleanup: got %d, want 1", removed)
	}
	if _, err := svc.Info(link.ShortCode); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("Info after cleanup: got %v, want ErrNotFound", err)
	}
}

// 过期同时配额也打满时，过期优先。
func TestResolve_ExpiredWinsOverQuota(t *testing.T) {
	svc, _, _, clock := setupService(t)
	owner := uuid.New()

	link, err := svc.CreateWithLimit("https://example.com", owner, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Resolve(link.ShortCode); err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	clock.Advance(25 * time.Hour)

	if _, err := svc.Resolve(link.ShortCode); !errors.Is(err, shortlink.ErrExpired) {
		t.Fatalf("got %v, want ErrExpired (expiry takes priority over quota)", err)
	}
}

func TestResolve_Inactive(t *testing.T) {
	svc, store, _, _ := setupService(t)
	owner := uuid.New()

	link, err := svc.CreateWithLimit("https://example.com", owner, 5)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// 把存储位直接翻成 false：既没过期也没打满配额
	err = store.Update(link.ShortCode, func(l *shortlink.Link) error {
		l.Active = false
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, err := svc.Resolve(link.ShortCode); !errors.Is(err, shortlink.ErrInactive) {
		t.Fatalf("got %v, want ErrInactive", err)
	}
}

// 场景：A 建链，B 删除失败 Forbidden，A 的 info 依然成功。
func TestDelete_OwnershipEnforced(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ownerA := uuid.New()
	ownerB := uuid.New()

	link, err := svc.Create("https://example.com", ownerA)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(link.ShortCode, ownerB); !errors.Is(err, shortlink.ErrForbidden) {
		t.Fatalf("delete by stranger: got %v, want ErrForbidden", err)
	}
	if _, err := svc.Info(link.ShortCode); err != nil {
		t.Fatalf("Info after forbidden delete: %v", err)
	}

	if err := svc.Delete(link.ShortCode, ownerA); err != nil {
		t.Fatalf("delete by owner: %v", err)
	}
	if err := svc.Delete(link.ShortCode, ownerA); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestList_OnlyOwnLinks(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ownerA := uuid.New()
	ownerB := uuid.New()

	if _, err := svc.Create("https://example.com/a", ownerA); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create("https://example.com/b", ownerA); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create("https://example.com/c", ownerB); err != nil {
		t.Fatalf("Create: %v", err)
	}

	links := svc.List(ownerA)
	if len(links) != 2 {
		t.Fatalf("List(ownerA): got %d links, want 2", len(links))
	}
	for _, l := range links {
		if l.OwnerID != ownerA {
			t.Fatalf("List(ownerA) returned a link owned by %s", l.OwnerID)
		}
	}
	if n := len(svc.List(uuid.New())); n != 0 {
		t.Fatalf("List(stranger): got %d links, want 0", n)
	}
}

// 点击守恒：limit=n、并发 k>=n 个 resolver，恰好 n 个成功，其余 LimitReached。
func TestResolve_ConcurrentConservation(t *testing.T) {
	svc, _, _, _ := setupService(t)
	owner := uuid.New()

	const limit = 50
	const resolvers = 120

	link, err := svc.CreateWithLimit("https://example.com", owner, limit)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, resolvers)
	for i := 0; i < resolvers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Resolve(link.ShortCode)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok, limited, other := 0, 0, 0
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, shortlink.ErrLimitReached):
			limited++
		default:
			other++
		}
	}
	if ok != limit {
		t.Fatalf("successes: got %d, want exactly %d", ok, limit)
	}
	if limited != resolvers-limit {
		t.Fatalf("limit failures: got %d, want %d", limited, resolvers-limit)
	}
	if other != 0 {
		t.Fatalf("unexpected failures: %d", other)
	}

	got, err := svc.Info(link.ShortCode)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if got.ClickCount != limit {
		t.Fatalf("ClickCount: got %d, want %d", got.ClickCount, limit)
	}
}

// cleanup 幂等：紧接着的第二次调用必须看到同样的 store 状态并返回 0。
func TestCleanup_Idempotent(t *testing.T) {
	svc, store, _, clock := setupService(t)
	owner := uuid.New()

	if _, err := svc.Create("https://example.com/keep", owner); err != nil {
		t.Fatalf("Create: %v", err)
	}
	expired, err := svc.Create("https://example.com/dead", owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// 耗尽一条 limit=1 的链接，cleanup 也要把它收走
	drained, err := svc.CreateWithLimit("https://example.com/drained", owner, 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Resolve(drained.ShortCode); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// 只让这一条过期：把它的 ExpiresAt 直接拨到过去
	err = store.Update(expired.ShortCode, func(l *shortlink.Link) error {
		l.ExpiresAt = clock.Now().Add(-time.Hour)
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if removed := svc.Cleanup(); removed != 2 {
		t.Fatalf("first Cleanup: got %d, want 2", removed)
	}
	before := len(store.All())
	if removed := svc.Cleanup(); removed != 0 {
		t.Fatalf("second Cleanup: got %d, want 0", removed)
	}
	if after := len(store.All()); after != before {
		t.Fatalf("second Cleanup changed the store: %d -> %d records", before, after)
	}
}

func TestUserService_CreateAndGet(t *testing.T) {
	users := shortlink.NewUserService(repo.NewUsersRepo())

	user := users.CreateUser()
	if user.ID == uuid.Nil {
		t.Fatal("CreateUser returned the nil UUID")
	}

	got, err := users.GetUser(user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("GetUser: got %s, want %s", got.ID, user.ID)
	}

	if _, err := users.GetUser(uuid.New()); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("GetUser(unknown): got %v, want ErrNotFound", err)
	}
}
