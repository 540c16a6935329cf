package fswatch

import (
	"sync"

	"github.com/samber/lo"
)

// Registry 保存排除(excludes)与包含(includes)两组匹配器，
// 回答"某个路径的变更事件是否应被屏蔽"
//
// 规则：只要任一 include 命中，路径就不被排除；否则任一 exclude 命中即排除
//
// 并发安全：写操作复制出新切片后再替换(copy-on-write)，
// 读操作在读锁下取得切片快照，随后不持锁地逐个调用匹配器
type Registry struct {
	mu       sync.RWMutex
	excludes []PathMatcher
	includes []PathMatcher
}

// NewRegistry 创建注册表，excludes 为启动时的静态排除规则(如配置中的通配符)
func NewRegistry(excludes ...PathMatcher) *Registry {
	r := &Registry{}
	for _, m := range excludes {
		if m != nil {
			r.excludes = append(r.excludes, m)
		}
	}
	return r
}

// AddExcludeMatcher 追加一条排除规则，同一匹配器可重复添加
func (r *Registry) AddExcludeMatcher(m PathMatcher) {
	if m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.excludes = appendCopy(r.excludes, m)
}

// RemoveExcludeMatcher 移除最近一次添加的该匹配器，不存在时无操作
func (r *Registry) RemoveExcludeMatcher(m PathMatcher) {
	if m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.excludes = removeLast(r.excludes, m)
}

// AddIncludeMatcher 追加一条包含规则
func (r *Registry) AddIncludeMatcher(m PathMatcher) {
	if m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.includes = appendCopy(r.includes, m)
}

// RemoveIncludeMatcher 移除最近一次添加的该包含规则
func (r *Registry) RemoveIncludeMatcher(m PathMatcher) {
	if m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.includes = removeLast(r.includes, m)
}

// IsIncluded 任一 include 命中即返回 true
func (r *Registry) IsIncluded(path string) bool {
	_, includes := r.snapshot()
	return anyMatch(includes, path)
}

// IsExcluded include 优先：被包含的路径永远不会被排除
//
// 两组规则取自同一个版本，匹配器执行期间的并发修改不影响本次结果
func (r *Registry) IsExcluded(path string) bool {
	excludes, includes := r.snapshot()
	if anyMatch(includes, path) {
		return false
	}
	return anyMatch(excludes, path)
}

// snapshot 在同一次读锁内取出两组规则
func (r *Registry) snapshot() (excludes, includes []PathMatcher) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.excludes, r.includes
}

// Len 返回当前 exclude、include 规则数量
func (r *Registry) Len() (excludes, includes int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.excludes), len(r.includes)
}

func anyMatch(list []PathMatcher, path string) bool {
	return lo.ContainsBy(list, func(m PathMatcher) bool {
		return m.Matches(path)
	})
}

// appendCopy 总是分配新底层数组，已发布的切片保持不变
func appendCopy(list []PathMatcher, m PathMatcher) []PathMatcher {
	out := make([]PathMatcher, len(list), len(list)+1)
	copy(out, list)
	return append(out, m)
}

func removeLast(list []PathMatcher, m PathMatcher) []PathMatcher {
	idx := lo.LastIndexOf(list, m)
	if idx < 0 {
		return list
	}
	out := make([]PathMatcher, 0, len(list)-1)
	out = append(out, list[:idx]...)
	return append(out, list[idx+1:]...)
}
