package fswatch

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefixMatcher(prefix string) PathMatcher {
	return MatchFunc(func(p string) bool { return strings.HasPrefix(p, prefix) })
}

func TestRegistryIncludeOverridesExclude(t *testing.T) {
	r := NewRegistry(prefixMatcher("/p/build"))
	r.AddExcludeMatcher(prefixMatcher("/p"))
	r.AddIncludeMatcher(prefixMatcher("/p/build/keep"))

	cases := []struct {
		path     string
		excluded bool
	}{
		{"/p/build/out.o", true},
		{"/p/src/main.go", true},
		{"/p/build/keep/a.txt", false},
		{"/other/file", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.excluded, r.IsExcluded(c.path), "IsExcluded(%s)", c.path)
	}
	assert.True(t, r.IsIncluded("/p/build/keep/a.txt"))
	assert.False(t, r.IsIncluded("/p/build/out.o"))
}

func TestRegistryEmpty(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.IsExcluded("/anything"))
	assert.False(t, r.IsIncluded("/anything"))
}

func TestRegistryMultisetRemoval(t *testing.T) {
	r := NewRegistry()
	m := prefixMatcher("/p")

	r.AddExcludeMatcher(m)
	r.AddExcludeMatcher(m)
	r.RemoveExcludeMatcher(m)
	assert.True(t, r.IsExcluded("/p/x"), "one registration must remain")

	r.RemoveExcludeMatcher(m)
	assert.False(t, r.IsExcluded("/p/x"))

	// 移除不存在的匹配器无操作
	r.RemoveExcludeMatcher(m)
	r.RemoveIncludeMatcher(m)
	r.RemoveExcludeMatcher(nil)
	excludes, includes := r.Len()
	assert.Zero(t, excludes)
	assert.Zero(t, includes)
}

func TestRegistryRemovalIsByIdentity(t *testing.T) {
	r := NewRegistry()
	a := prefixMatcher("/p")
	b := prefixMatcher("/p")

	r.AddIncludeMatcher(a)
	r.RemoveIncludeMatcher(b)
	assert.True(t, r.IsIncluded("/p/x"), "equivalent but distinct matcher must not remove a")

	r.RemoveIncludeMatcher(a)
	assert.False(t, r.IsIncluded("/p/x"))
}

func TestRegistryRemoveKeepsOrder(t *testing.T) {
	a, b, c := prefixMatcher("/a"), prefixMatcher("/b"), prefixMatcher("/c")
	r := NewRegistry(a, b, c)
	r.RemoveExcludeMatcher(b)

	r.mu.RLock()
	defer r.mu.RUnlock()
	require.Len(t, r.excludes, 2)
	assert.Same(t, a, r.excludes[0])
	assert.Same(t, c, r.excludes[1])
}

// 匹配器回调进入 Registry 不会死锁
func TestRegistryReentrantMatcher(t *testing.T) {
	r := NewRegistry()
	r.AddExcludeMatcher(MatchFunc(func(p string) bool {
		return !r.IsIncluded(p) && strings.HasSuffix(p, ".tmp")
	}))

	done := make(chan bool, 1)
	go func() { done <- r.IsExcluded("/x/a.tmp") }()
	select {
	case got := <-done:
		assert.True(t, got)
	case <-time.After(2 * time.Second):
		t.Fatal("IsExcluded deadlocked")
	}
}

func TestRegistryConcurrentReadersAndWriters(t *testing.T) {
	r := NewRegistry()
	fixed := prefixMatcher("/project/build")
	r.AddExcludeMatcher(fixed)

	const readers, writers, rounds = 8, 4, 500
	var (
		wg       sync.WaitGroup
		failures atomic.Int64
		stop     = make(chan struct{})
	)

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if !r.IsExcluded("/project/build/out") {
					failures.Add(1)
				}
			}
		}()
	}

	var writersWG sync.WaitGroup
	for i := 0; i < writers; i++ {
		writersWG.Add(1)
		go func(i int) {
			defer writersWG.Done()
			for j := 0; j < rounds; j++ {
				m := prefixMatcher(fmt.Sprintf("/unrelated/%d/%d", i, j))
				r.AddExcludeMatcher(m)
				r.AddIncludeMatcher(m)
				r.RemoveIncludeMatcher(m)
				r.RemoveExcludeMatcher(m)
			}
		}(i)
	}
	writersWG.Wait()
	close(stop)
	wg.Wait()

	assert.Zero(t, failures.Load(), "readers observed a rule set without the fixed matcher")
	excludes, includes := r.Len()
	assert.Equal(t, 1, excludes)
	assert.Zero(t, includes)
}

func BenchmarkRegistryIsExcluded(b *testing.B) {
	patterns := []string{"**/.git", "**/.git/**", "**/node_modules/**", "**/target/**"}
	static, err := GlobMatchers(patterns)
	if err != nil {
		b.Fatal(err)
	}
	r := NewRegistry(static...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.IsExcluded("/projects/app/src/main/java/App.java")
	}
}

// 匹配器执行期间规则被修改，本次判断仍只看到调用开始时的版本
func TestRegistryReadUsesSingleVersion(t *testing.T) {
	r := NewRegistry()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	r.AddIncludeMatcher(MatchFunc(func(string) bool {
		once.Do(func() {
			close(entered)
			<-release
		})
		return false
	}))

	result := make(chan bool, 1)
	go func() { result <- r.IsExcluded("/p/x") }()

	<-entered
	// 之后的每个版本都因 include 命中而不排除 /p/x
	r.AddIncludeMatcher(prefixMatcher("/p"))
	r.AddExcludeMatcher(prefixMatcher("/p"))
	close(release)

	select {
	case excluded := <-result:
		assert.False(t, excluded)
	case <-time.After(time.Second):
		t.Fatal("IsExcluded did not return")
	}
	assert.False(t, r.IsExcluded("/p/x"))
}
