package shortlink

import (
	"time"

	"github.com/google/uuid"
)

// Link 是短链领域对象（domain model）。
//
// 说明：
// - ShortCode：短码（拼接成最终短链 URL，例如 clck.ru/{code}），同时是唯一标识：
//   两个 Link 相等当且仅当 ShortCode 相等，store 也以它为 key
// - ClickLimit 创建后不可变；ClickCount 只增不减，且永远不超过 ClickLimit
// - Active 是"存储的"状态位；读取方必须用 IsActive(now) 判断可用性，
//   因为一条已过期的链接可能还没来得及被任何操作翻转这个位
//
// 设计原因：
// - 领域层只关心业务含义，不携带 CLI/展示细节
// - 记录归 store 独占所有；对外只发副本，修改必须经过 store 的临界区
type Link struct {
	ShortCode   string
	OriginalURL string
	OwnerID     uuid.UUID
	CreatedAt   time.Time
	ExpiresAt   time.Time
	ClickLimit  int
	ClickCount  int
	Active      bool
}

// NewLink 是唯一的构造入口：要么返回一条完整合法的记录，要么返回错误。
// 不存在"半初始化"的 Link 可被外界观察到。
func NewLink(shortCode, originalURL string, ownerID uuid.UUID, createdAt, expiresAt time.Time, clickLimit int) (Link, error) {
	if shortCode == "" {
		return Link{}, ErrInvalidConfiguration
	}
	if originalURL == "" {
		return Link{}, ErrInvalidConfiguration
	}
	if ownerID == uuid.Nil {
		return Link{}, ErrInvalidConfiguration
	}
	if clickLimit <= 0 {
		return Link{}, ErrInvalidConfiguration
	}
	if !expiresAt.After(createdAt) {
		return Link{}, ErrInvalidConfiguration
	}
	return Link{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		OwnerID:     ownerID,
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
		ClickLimit:  clickLimit,
		ClickCount:  0,
		Active:      true,
	}, nil
}

// IsExpired 上报 TTL 是否已经走完。now >= ExpiresAt 即视为过期。
func (l Link) IsExpired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// IsActive 是读取方应当使用的可用性判断：
// 存储位为 true 但已过期的链接，读起来也是不可用的。
func (l Link) IsActive(now time.Time) bool {
	return l.Active && !l.IsExpired(now)
}

func (l Link) IsOwnedBy(userID uuid.UUID) bool {
	return l.OwnerID == userID
}

// RemainingClicks 剩余可用次数，下界为 0。
func (l Link) RemainingClicks() int {
	if r := l.ClickLimit - l.ClickCount; r > 0 {
		return r
	}
	return 0
}
