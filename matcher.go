package fswatch

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
)

// PathMatcher 判断一个绝对路径是否命中某条规则
//
// 实现必须是可比较的类型(通常是指针)，Registry 按身份移除匹配器
type PathMatcher interface {
	Matches(path string) bool
}

// funcMatcher 把闭包包装成 PathMatcher
type funcMatcher struct {
	fn func(string) bool
}

func (m *funcMatcher) Matches(path string) bool {
	return m.fn(path)
}

// MatchFunc 用闭包构造匹配器，每次调用返回不同的实例
func MatchFunc(fn func(path string) bool) PathMatcher {
	return &funcMatcher{fn: fn}
}

// GlobMatcher 使用 doublestar 通配符匹配完整路径，如 "**/node_modules/**"
type GlobMatcher struct {
	pattern string
}

// NewGlobMatcher 校验并创建通配符匹配器
func NewGlobMatcher(pattern string) (*GlobMatcher, error) {
	pattern = filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Wrapf(ErrInvalidPattern, "%q", pattern)
	}
	return &GlobMatcher{pattern: pattern}, nil
}

// Pattern 返回归一化后的通配符
func (m *GlobMatcher) Pattern() string {
	return m.pattern
}

func (m *GlobMatcher) Matches(path string) bool {
	ok, err := doublestar.Match(m.pattern, filepath.ToSlash(path))
	return err == nil && ok
}

// GlobMatchers 批量创建通配符匹配器，遇到第一个非法模式即返回错误
func GlobMatchers(patterns []string) ([]PathMatcher, error) {
	out := make([]PathMatcher, 0, len(patterns))
	for _, p := range patterns {
		m, err := NewGlobMatcher(p)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
