package shortlink

import "errors"

// 领域层统一的错误“种类”。
//
// 设计原因：
// - 上层（CLI）可以用 errors.Is 稳定地把它们映射成一行用户可读的文案，
//   而不需要关心底层判定细节
// - 统一错误变量，避免各处返回不同字符串导致难以判断/测试
var (
	// ErrNotFound：短码在 store 中不存在。
	ErrNotFound = errors.New("link not found")

	// ErrForbidden：非所有者尝试删除。
	ErrForbidden = errors.New("not the link owner")

	// ErrExpired：resolve 时 TTL 已走完。过期优先于配额判定。
	ErrExpired = errors.New("link expired")

	// ErrLimitReached：resolve 时点击配额已耗尽。
	ErrLimitReached = errors.New("link click limit reached")

	// ErrInactive：链接因其他原因已被置为不可用。
	ErrInactive = errors.New("link inactive")

	// ErrCodeExhausted：有限次重试后仍无法分配未占用的短码。
	ErrCodeExhausted = errors.New("cannot allocate unused short code")

	// ErrInvalidConfiguration：构造期不变量被破坏（例如短码长度非正）。
	// 启动时出现是致命错误。
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
