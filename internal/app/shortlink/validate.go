package shortlink

import (
	"errors"
	"strings"
)

// ErrInvalidURL 是领域层对“URL 不合法”的统一错误。
// 点击配额传入非正数也归入这一类（都是 create 的入参问题）。
var ErrInvalidURL = errors.New("invalid url")

// maxURLLength：超过这个长度的 URL 直接拒绝。
const maxURLLength = 2000

// ValidateURL 校验用户输入的 URL 是否满足短链服务的最小要求。
//
// 规则：
// - 非空
// - 长度 <= 2000
// - scheme 必须是 http/https（大小写不敏感）
//
// 设计原因（为什么放在领域层）：
// - 避免重复：CLI、service 各写一遍规则会很快失控
// - 便于测试：纯函数天然适合写单元测试
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrInvalidURL
	}
	if len(raw) > maxURLLength {
		return ErrInvalidURL
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return ErrInvalidURL
	}
	return nil
}
