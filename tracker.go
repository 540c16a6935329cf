package fswatch

import (
	"bufio"
	"bytes"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

type trackerState int

const (
	trackerNew trackerState = iota
	trackerActive
	trackerStopped
)

// ExcludesFileTracker 让 Registry 与各项目的排除文件保持同步
//
// 排除文件位于 <项目根>/<MetadataDir>/<FileName>，每行一个相对项目根的路径。
// Start 时向 Registry 安装唯一一个动态排除匹配器，它直接读取 excludes，
// 之后的增删改只替换 excludes 中的条目，无需重新注册匹配器
type ExcludesFileTracker struct {
	registry *Registry
	watch    WatchService
	projects ProjectLister
	fs       afero.Fs
	log      *log.Logger
	cfg      ConfigTracker

	// 项目根 -> 排除的绝对路径集合；集合发布后只读，更新时整体替换
	mu       sync.RWMutex
	excludes map[string]map[string]struct{}

	stateMu sync.Mutex
	state   trackerState
	watchID RegistrationID

	fileMatcher     PathMatcher
	excludesMatcher PathMatcher
}

// TrackerOption 定制 ExcludesFileTracker
type TrackerOption func(*ExcludesFileTracker)

// WithFs 指定读取排除文件所用的文件系统，默认 afero.NewOsFs()
func WithFs(fs afero.Fs) TrackerOption {
	return func(t *ExcludesFileTracker) {
		if fs != nil {
			t.fs = fs
		}
	}
}

// WithLogger 指定日志记录器
func WithLogger(l *log.Logger) TrackerOption {
	return func(t *ExcludesFileTracker) {
		if l != nil {
			t.log = l
		}
	}
}

// WithTrackerConfig 覆盖排除文件的约定位置
func WithTrackerConfig(cfg ConfigTracker) TrackerOption {
	return func(t *ExcludesFileTracker) {
		t.cfg = cfg
	}
}

// NewExcludesFileTracker 创建尚未启动的 tracker
func NewExcludesFileTracker(registry *Registry, watch WatchService, projects ProjectLister, opts ...TrackerOption) *ExcludesFileTracker {
	t := &ExcludesFileTracker{
		registry: registry,
		watch:    watch,
		projects: projects,
		fs:       afero.NewOsFs(),
		log:      log.Default().With("component", "excludes-tracker"),
		cfg:      DefaultConfigTracker(),
		excludes: make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.fileMatcher = MatchFunc(t.isExcludesFile)
	t.excludesMatcher = MatchFunc(t.isExcludedByFile)
	return t
}

// Start 开始跟踪排除文件：
//  1. 让排除文件本身始终可被监控(include)
//  2. 订阅排除文件的增删改
//  3. 读取所有已知项目当前的排除文件
//  4. 安装动态排除匹配器
func (t *ExcludesFileTracker) Start() error {
	if err := t.cfg.Validate(); err != nil {
		return err
	}

	t.stateMu.Lock()
	switch t.state {
	case trackerActive:
		t.stateMu.Unlock()
		return ErrTrackerStarted
	case trackerStopped:
		t.stateMu.Unlock()
		return ErrTrackerStopped
	}
	t.registry.AddIncludeMatcher(t.fileMatcher)
	t.watchID = t.watch.RegisterByMatcher(t.fileMatcher, t.handleModify, t.handleModify, t.handleDelete)
	t.state = trackerActive
	t.stateMu.Unlock()

	t.log.Info("started tracking excludes files", "file", filepath.Join(t.cfg.MetadataDir, t.cfg.FileName))

	t.Rescan()
	t.registry.AddExcludeMatcher(t.excludesMatcher)
	return nil
}

// Stop 取消订阅，可重复调用。动态排除匹配器保留在 Registry 中
func (t *ExcludesFileTracker) Stop() {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	if t.state != trackerActive {
		t.state = trackerStopped
		return
	}
	t.watch.UnregisterByMatcher(t.watchID)
	t.state = trackerStopped
	t.log.Info("stopped tracking excludes files")
}

// Rescan 重新枚举项目并读取各自的排除文件
//
// 枚举失败视为"暂无项目"，只记录日志，等待下一次显式调用
func (t *ExcludesFileTracker) Rescan() {
	projects, err := t.projects.ListProjects()
	if err != nil {
		t.log.Error("failed to list projects", "err", err)
		return
	}
	t.log.Debug("reading excludes files", "projects", len(projects))

	for _, p := range projects {
		if p.BaseFolder == "" {
			continue
		}
		location := filepath.Join(p.BaseFolder, t.cfg.MetadataDir, t.cfg.FileName)
		exists, err := afero.Exists(t.fs, location)
		if err != nil {
			t.log.Error("failed to stat excludes file", "path", location, "err", err)
			continue
		}
		if exists {
			t.handleModify(location)
		}
	}
}

// Excludes 返回某个项目当前生效的排除路径(已排序)
func (t *ExcludesFileTracker) Excludes(projectRoot string) []string {
	t.mu.RLock()
	set := t.excludes[filepath.Clean(projectRoot)]
	t.mu.RUnlock()
	out := lo.Keys(set)
	sort.Strings(out)
	return out
}

// Projects 返回存在有效排除条目的项目根(已排序)
func (t *ExcludesFileTracker) Projects() []string {
	t.mu.RLock()
	out := lo.Keys(t.excludes)
	t.mu.RUnlock()
	sort.Strings(out)
	return out
}

// handleModify 处理排除文件的创建与修改：整体重算该项目的排除集合
func (t *ExcludesFileTracker) handleModify(location string) {
	file, root, err := t.projectRootOf(location)
	if err != nil {
		t.log.Warn("ignoring excludes file notification", "path", location, "err", err)
		return
	}

	// 先读盘再加锁，读失败时保留旧条目
	set, err := t.parse(file, root)
	if err != nil {
		t.log.Error("failed to read excludes file", "path", file, "err", err)
		return
	}

	t.mu.Lock()
	prev := t.excludes[root]
	if len(set) == 0 {
		delete(t.excludes, root)
	} else {
		t.excludes[root] = set
	}
	t.mu.Unlock()

	t.log.Debug("updated project excludes", "project", root, "excludes", len(set))

	dropped := lo.SomeBy(lo.Keys(prev), func(p string) bool {
		_, ok := set[p]
		return !ok
	})
	if dropped {
		t.rewatch(root)
	}
}

func (t *ExcludesFileTracker) handleDelete(location string) {
	_, root, err := t.projectRootOf(location)
	if err != nil {
		t.log.Warn("ignoring excludes file notification", "path", location, "err", err)
		return
	}

	t.mu.Lock()
	_, existed := t.excludes[root]
	delete(t.excludes, root)
	t.mu.Unlock()

	t.log.Debug("removed project excludes", "project", root)
	if existed {
		t.rewatch(root)
	}
}

// rewatch 让 WatchService 补上此前因排除而跳过的目录
func (t *ExcludesFileTracker) rewatch(root string) {
	tw, ok := t.watch.(TreeWatcher)
	if !ok {
		return
	}
	if err := tw.WatchTree(root); err != nil {
		t.log.Warn("failed to rewatch project", "project", root, "err", err)
	}
}

// parse 读取排除文件，返回解析后且在磁盘上存在的绝对路径集合
func (t *ExcludesFileTracker) parse(file, root string) (map[string]struct{}, error) {
	data, err := afero.ReadFile(t.fs, file)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p := resolveExclude(root, line)
		ok, err := afero.Exists(t.fs, p)
		if err != nil {
			t.log.Debug("skipping exclude entry", "file", file, "entry", line, "err", err)
			continue
		}
		if ok {
			set[p] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "scan %s", file)
	}
	return set, nil
}

// projectRootOf 排除文件位于项目根下两级，项目根即其祖父目录
func (t *ExcludesFileTracker) projectRootOf(location string) (file, root string, err error) {
	if !filepath.IsAbs(location) {
		return "", "", errors.Wrapf(ErrMalformedExcludesPath, "%q is not absolute", location)
	}
	file = filepath.Clean(location)
	dir := filepath.Dir(file)
	if filepath.Base(file) != t.cfg.FileName || filepath.Base(dir) != t.cfg.MetadataDir {
		return "", "", errors.Wrapf(ErrMalformedExcludesPath, "%q is not <project>/%s/%s", location, t.cfg.MetadataDir, t.cfg.FileName)
	}
	return file, filepath.Dir(dir), nil
}

// isExcludesFile 匹配任意位置的 <MetadataDir>/<FileName> 文件(非目录)
func (t *ExcludesFileTracker) isExcludesFile(path string) bool {
	if filepath.Base(path) != t.cfg.FileName || filepath.Base(filepath.Dir(path)) != t.cfg.MetadataDir {
		return false
	}
	// 有意访问磁盘以排除同名目录，只在文件名命中时发生；删除事件时 Stat 失败按"非目录"处理
	if fi, err := t.fs.Stat(path); err == nil && fi.IsDir() {
		return false
	}
	return true
}

// isExcludedByFile 是安装到 Registry 的动态排除规则
func (t *ExcludesFileTracker) isExcludedByFile(path string) bool {
	path = filepath.Clean(path)
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, set := range t.excludes {
		if _, ok := set[path]; ok {
			return true
		}
	}
	return false
}

func resolveExclude(root, entry string) string {
	entry = filepath.FromSlash(entry)
	if filepath.IsAbs(entry) {
		return filepath.Clean(entry)
	}
	return filepath.Join(root, entry)
}
