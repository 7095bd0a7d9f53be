package shortlink

import (
	"strconv"
	"time"

	"clck.local/internal/platform/metrics"
	"github.com/google/uuid"
)

// Store 表示“短链存储”的能力。实现见 repo 包（内存版）。
//
// 约定：
//   - 所有操作彼此原子；Save 对同一短码是 last-write-wins
//   - FindByOwner / All 返回调用期间某一时刻的快照副本，
//     返回后的记录不会再被并发修改（发出去的是拷贝）
//   - Update 在条目写锁内执行 fn：这是 resolve 的线性化点。
//     fn 对记录的修改无论 fn 返回什么都会保留；短码不存在返回 ErrNotFound
type Store interface {
	Save(link Link)
	FindByCode(code string) (Link, bool)
	FindByOwner(ownerID uuid.UUID) []Link
	All() []Link
	Delete(code string) bool
	Exists(code string) bool
	Update(code string, fn func(*Link) error) error
}

// CodeGenerator 表示短码生成能力。
// 用接口表达：测试可以替换成固定返回值的桩来打冲突/耗尽路径。
type CodeGenerator interface {
	Generate(originalURL string, userID uuid.UUID) string
}

// Notifier 是 service 在链接变为不可用时需要的最小通知面。
// 接口定义在消费方：notify 包的各个实现（控制台/空实现/测试录制）都满足它。
type Notifier interface {
	LinkExpired(ownerID uuid.UUID, shortCode, originalURL string)
	LinkLimitReached(ownerID uuid.UUID, shortCode, originalURL string)
}

// maxCodeAttempts：分配短码时的冲突重试上限。
const maxCodeAttempts = 10

// Service 是短链生命周期的事务层，也是外部调用方唯一接触的组件。
//
// 职责：URL 校验、短码分配与冲突处理、所有权检查、点击计数、
// 过期判定、原子的 consume-or-reject，以及供 reaper 调用的 cleanup。
type Service struct {
	store        Store
	gen          CodeGenerator
	notifier     Notifier
	ttl          time.Duration
	defaultLimit int

	// now 可注入：测试里用假时钟驱动过期场景，避免真等待
	now func() time.Time
}

// Option 调整 Service 的可选行为。
type Option func(*Service)

// WithNow 替换时钟来源。测试用假时钟驱动过期场景，避免真等待。
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, gen CodeGenerator, notifier Notifier, ttl time.Duration, defaultLimit int, opts ...Option) (*Service, error) {
	if ttl <= 0 || defaultLimit <= 0 {
		return nil, ErrInvalidConfiguration
	}
	s := &Service{
		store:        store,
		gen:          gen,
		notifier:     notifier,
		ttl:          ttl,
		defaultLimit: defaultLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create 用默认点击配额创建短链。
func (s *Service) Create(originalURL string, ownerID uuid.UUID) (Link, error) {
	return s.CreateWithLimit(originalURL, ownerID, s.defaultLimit)
}

// CreateWithLimit 用调用方指定的点击配额创建短链。
//
// 失败：
// - URL 为空 / 超长 / scheme 不是 http(s)，或 clickLimit 非正：ErrInvalidURL
// - 重试耗尽仍然撞码：ErrCodeExhausted
func (s *Service) CreateWithLimit(originalURL string, ownerID uuid.UUID, clickLimit int) (Link, error) {
	if err := ValidateURL(originalURL); err != nil {
		return Link{}, err
	}
	if clickLimit <= 0 {
		return Link{}, ErrInvalidURL
	}

	code, err := s.allocateCode(originalURL, ownerID)
	if err != nil {
		return Link{}, err
	}

	now := s.now()
	link, err := NewLink(code, originalURL, ownerID, now, now.Add(s.ttl), clickLimit)
	if err != nil {
		return Link{}, err
	}

	s.store.Save(link)
	metrics.LinksCreatedTotal.Inc()
	return link, nil
}

// Resolve 消费一次点击：原子地扣减剩余配额并返回原始 URL，或带原因失败。
//
// 判定优先级（在同一个临界区内完成，对其他 resolver 和 reaper 表现为原子）：
//  1. 短码不存在           -> ErrNotFound
//  2. now >= ExpiresAt     -> 置 Active=false，通知所有者，ErrExpired
//  3. 配额已耗尽           -> 置 Active=false，通知所有者，ErrLimitReached
//  4. Active 已因其他原因为 false -> ErrInactive
//  5. 否则计数 +1；打满配额则顺手置 Active=false；返回 URL
//
// 通知在锁外发出，且先于错误抵达调用方。
func (s *Service) Resolve(code string) (string, error) {
	var (
		originalURL string
		ownerID     uuid.UUID
	)
	err := s.store.Update(code, func(l *Link) error {
		originalURL = l.OriginalURL
		ownerID = l.OwnerID

		now := s.now()
		if l.IsExpired(now) {
			l.Active = false
			return ErrExpired
		}
		if l.ClickCount >= l.ClickLimit {
			l.Active = false
			return ErrLimitReached
		}
		if !l.Active {
			return ErrInactive
		}

		l.ClickCount++
		if l.ClickCount >= l.ClickLimit {
			l.Active = false
		}
		return nil
	})

	switch err {
	case nil:
		metrics.ResolvesTotal.WithLabelValues("ok").Inc()
		return originalURL, nil
	case ErrExpired:
		metrics.ResolvesTotal.WithLabelValues("expired").Inc()
		if s.notifier != nil {
			s.notifier.LinkExpired(ownerID, code, originalURL)
		}
	case ErrLimitReached:
		metrics.ResolvesTotal.WithLabelValues("limit_reached").Inc()
		if s.notifier != nil {
			s.notifier.LinkLimitReached(ownerID, code, originalURL)
		}
	case ErrInactive:
		metrics.ResolvesTotal.WithLabelValues("inactive").Inc()
	case ErrNotFound:
		metrics.ResolvesTotal.WithLabelValues("not_found").Inc()
	}
	return "", err
}

// List 返回属于 ownerID 的全部短链（快照，顺序不保证）。
func (s *Service) List(ownerID uuid.UUID) []Link {
	return s.store.FindByOwner(ownerID)
}

// Info 返回短码对应的记录，只读不消费。
func (s *Service) Info(code string) (Link, error) {
	link, ok := s.store.FindByCode(code)
	if !ok {
		return Link{}, ErrNotFound
	}
	return link, nil
}

// Delete 删除短链。只有所有者可以删：其他人拿到 ErrForbidden。
// 删除后短码可以被未来的创建重新分配。
func (s *Service) Delete(code string, requesterID uuid.UUID) error {
	link, ok := s.store.FindByCode(code)
	if !ok {
		return ErrNotFound
	}
	if !link.IsOwnedBy(requesterID) {
		return ErrForbidden
	}
	s.store.Delete(code)
	return nil
}

// Cleanup 扫描全部记录，回收已过期或已不可用（含配额打满）的条目，
// 返回删除数量。由 reaper 周期性调用；对同一状态连续调用第二次返回 0。
func (s *Service) Cleanup() int {
	now := s.now()
	removed := 0
	for _, l := range s.store.All() {
		if l.IsExpired(now) || !l.Active {
			if s.store.Delete(l.ShortCode) {
				removed++
			}
		}
	}
	if removed > 0 {
		metrics.LinksEvictedTotal.Add(float64(removed))
	}
	return removed
}

// allocateCode 生成未被占用的短码，带有限次冲突重试：
// 第 n 次冲突后改用 url+n 作为哈希输入再试，attempt = 0..9。
func (s *Service) allocateCode(originalURL string, ownerID uuid.UUID) (string, error) {
	code := s.gen.Generate(originalURL, ownerID)

	attempts := 0
	for s.store.Exists(code) && attempts < maxCodeAttempts {
		code = s.gen.Generate(originalURL+strconv.Itoa(attempts), ownerID)
		attempts++
	}
	if s.store.Exists(code) {
		return "", ErrCodeExhausted
	}
	return code, nil
}
