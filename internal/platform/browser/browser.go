package browser

import "github.com/pkg/browser"

// Launcher 表示“在宿主系统浏览器里打开 URL”的能力。
// 用接口表达：测试替换成录制型实现，不真的弹浏览器。
type Launcher interface {
	Open(url string) error
}

// System 委托给系统默认浏览器。打开失败的 I/O 错误原样上抛，
// 由 CLI 作为一次失败的 use 呈现给用户。
type System struct{}

func NewSystem() *System {
	return &System{}
}

func (*System) Open(url string) error {
	return browser.OpenURL(url)
}
