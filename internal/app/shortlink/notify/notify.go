package notify

import (
	"fmt"
	"io"
	"time"

	"clck.local/internal/app/shortlink"
	"github.com/google/uuid"
)

// timeNow 可在测试里替换，固定 status 行的判定时刻。
var timeNow = time.Now

// Notifier 是面向用户的消息出口。
//
// 设计原因：
// - 用接口表达：测试可以替换成录制型实现，断言“确实发出过一次过期通知”
// - 实现必须无状态，且不得在调用结束后继续持有 Link
type Notifier interface {
	// LinkExpired：链接因 TTL 走完而不可用。
	LinkExpired(ownerID uuid.UUID, shortCode, originalURL string)
	// LinkLimitReached：链接因点击配额耗尽而不可用。
	LinkLimitReached(ownerID uuid.UUID, shortCode, originalURL string)
	// LinkUnavailable：链接因给定原因不可用。
	LinkUnavailable(shortCode, reason string)
	// Success：一条成功提示。
	Success(message string)
	// LinkInfo：渲染一条链接的完整元数据。
	LinkInfo(link shortlink.Link, shortDomain string)
}

const banner = "============================================================"

// Console 把消息渲染到给定的 writer（正常运行时是 stdout）。
//
// enabled 只门控 notify 族消息；LinkInfo 是查询展示而非通知，
// 关掉通知后 info 命令依然要能看到元数据。
type Console struct {
	out     io.Writer
	enabled bool
}

func NewConsole(out io.Writer, enabled bool) *Console {
	return &Console{out: out, enabled: enabled}
}

func (c *Console) LinkExpired(ownerID uuid.UUID, shortCode, originalURL string) {
	if !c.enabled {
		return
	}
	fmt.Fprintf(c.out, "\n%s\n", banner)
	fmt.Fprintf(c.out, "  NOTICE: link expired\n")
	fmt.Fprintf(c.out, "%s\n", banner)
	fmt.Fprintf(c.out, "  Owner ID:     %s\n", ownerID)
	fmt.Fprintf(c.out, "  Short code:   %s\n", shortCode)
	fmt.Fprintf(c.out, "  Original URL: %s\n", originalURL)
	fmt.Fprintf(c.out, "  Reason:       time-to-live elapsed\n")
	fmt.Fprintf(c.out, "  Action:       create a new short link to keep using this URL\n\n")
}

func (c *Console) LinkLimitReached(ownerID uuid.UUID, shortCode, originalURL string) {
	if !c.enabled {
		return
	}
	fmt.Fprintf(c.out, "\n%s\n", banner)
	fmt.Fprintf(c.out, "  NOTICE: click limit reached\n")
	fmt.Fprintf(c.out, "%s\n", banner)
	fmt.Fprintf(c.out, "  Owner ID:     %s\n", ownerID)
	fmt.Fprintf(c.out, "  Short code:   %s\n", shortCode)
	fmt.Fprintf(c.out, "  Original URL: %s\n", originalURL)
	fmt.Fprintf(c.out, "  Reason:       maximum click count reached\n")
	fmt.Fprintf(c.out, "  Action:       create a new short link to keep using this URL\n\n")
}

func (c *Console) LinkUnavailable(shortCode, reason string) {
	if !c.enabled {
		return
	}
	fmt.Fprintf(c.out, "\n%s\n", banner)
	fmt.Fprintf(c.out, "  NOTICE: link unavailable\n")
	fmt.Fprintf(c.out, "%s\n", banner)
	fmt.Fprintf(c.out, "  Short code: %s\n", shortCode)
	fmt.Fprintf(c.out, "  Reason:     %s\n\n", reason)
}

func (c *Console) Success(message string) {
	if !c.enabled {
		return
	}
	fmt.Fprintf(c.out, "\n+ %s\n", message)
}

func (c *Console) LinkInfo(link shortlink.Link, shortDomain string) {
	status := "inactive"
	if link.IsActive(timeNow()) {
		status = "active"
	}
	fmt.Fprintf(c.out, "\n%s\n", banner)
	fmt.Fprintf(c.out, "  Link info\n")
	fmt.Fprintf(c.out, "%s\n", banner)
	fmt.Fprintf(c.out, "  Short URL:    %s/%s\n", shortDomain, link.ShortCode)
	fmt.Fprintf(c.out, "  Original URL: %s\n", link.OriginalURL)
	fmt.Fprintf(c.out, "  Owner ID:     %s\n", link.OwnerID)
	fmt.Fprintf(c.out, "  Created:      %s\n", link.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(c.out, "  Expires:      %s\n", link.ExpiresAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(c.out, "  Clicks:       %d/%d (remaining: %d)\n", link.ClickCount, link.ClickLimit, link.RemainingClicks())
	fmt.Fprintf(c.out, "  Status:       %s\n\n", status)
}
