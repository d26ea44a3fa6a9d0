// Package slug 从越南语显示名生成 URL 安全的标识符
//
// 规则与后端保持一致：NFD 分解后去除组合变音符号，
// đ/Đ 需要在 normalize 之前单独替换（NFD 无法分解该字符），
// 最后转小写、压缩分隔符为单个连字符。
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks NFD 分解 + 去除 Mn 类组合符号
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make 生成 slug
//
// 例："Sách Thiếu Nhi" → "sach-thieu-nhi"
func Make(text string) string {
	if text == "" {
		return ""
	}

	// đ/Đ 先替换，NFD 不会拆出基础字符 d
	text = strings.NewReplacer("đ", "d", "Đ", "d").Replace(text)

	out, _, err := transform.String(stripMarks, text)
	if err != nil {
		out = text
	}
	out = strings.ToLower(out)

	var b strings.Builder
	b.Grow(len(out))
	lastDash := true // 避免开头的连字符
	for _, r := range out {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '-' || r == '_':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		default:
			// 其余符号直接丢弃
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// MakeKey 生成分类内部 key
//
// 例："Sách Tiếng Việt" → "SACH_TIENG_VIET"
func MakeKey(text string) string {
	return strings.ToUpper(strings.ReplaceAll(Make(text), "-", "_"))
}
