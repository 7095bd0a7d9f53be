package shortlink

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/google/uuid"
)

// alphabet：短码输出字母表（62 个字符）。顺序参与取模映射，改动会改变已有短码。
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator 根据 (用户, URL) 生成定长短码。
//
// 设计原因：
// - 哈希输入把 URL 和用户耦合在一起：不同用户缩短同一个 URL 会得到不同短码
// - 纯函数、可重入：同样的输入永远得到同样的短码，测试可以直接断言
// - SHA-256 截断仍然可能撞码，所以 service 层还要做冲突重试
type Generator struct {
	codeLength int
}

// NewGenerator 构造生成器。codeLength <= 0 属于配置错误，启动时即失败。
func NewGenerator(codeLength int) (*Generator, error) {
	if codeLength <= 0 {
		return nil, ErrInvalidConfiguration
	}
	return &Generator{codeLength: codeLength}, nil
}

// Generate 为 (originalURL, userID) 组合生成短码。
//
// 流程：
//  1. 拼接 userID 的规范文本形式 + "|" + URL，取 UTF-8 字节做 SHA-256
//  2. 取摘要前 2L 字节做 URL-safe base64（无填充）
//  3. 取渲染结果的前 L 个字符，按 alphabet[b mod 62] 映射进输出字母表
func (g *Generator) Generate(originalURL string, userID uuid.UUID) string {
	input := userID.String() + "|" + originalURL
	sum := sha256.Sum256([]byte(input))

	n := g.codeLength * 2
	if n > len(sum) {
		n = len(sum)
	}
	encoded := base64.RawURLEncoding.EncodeToString(sum[:n])

	m := g.codeLength
	if m > len(encoded) {
		m = len(encoded)
	}
	out := make([]byte, m)
	for i := 0; i < m; i++ {
		out[i] = alphabet[int(encoded[i])%len(alphabet)]
	}
	return string(out)
}

// CodeLength 返回生成短码的长度。
func (g *Generator) CodeLength() int {
	return g.codeLength
}
