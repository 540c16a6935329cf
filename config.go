package fswatch

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const (
	// DefaultMetadataDir 项目内隐藏的元数据目录
	DefaultMetadataDir = ".che"
	// DefaultExcludesFileName 排除文件的固定文件名
	DefaultExcludesFileName = "fileWatcherExcludes"

	defaultDebounce    = 10 * time.Millisecond
	defaultWorkerCount = 32
	envPrefix          = "FSWATCH"
)

// Config 是 fswatchd 的完整配置
type Config struct {
	ProjectsRoot string        `mapstructure:"projects_root"`
	LogLevel     string        `mapstructure:"log_level"`
	Watcher      ConfigWatcher `mapstructure:"watcher"`
	Tracker      ConfigTracker `mapstructure:"tracker"`
}

// ConfigWatcher 用于配置 Watcher
//
// WatchPaths：需要监控的路径（可指定多个）
// IgnorePatterns：静态排除规则，doublestar 通配符，匹配绝对路径
// Debounce：事件合并的时间间隔, 默认 10ms
// WorkerCount：并发处理文件变更的最大worker数量, 默认 32
type ConfigWatcher struct {
	WatchPaths     []string      `mapstructure:"watch_paths"`
	IgnorePatterns []string      `mapstructure:"ignore_patterns"`
	Debounce       time.Duration `mapstructure:"debounce"`
	WorkerCount    int           `mapstructure:"worker_count"`
}

// ConfigTracker 描述排除文件的约定位置：<项目根>/<MetadataDir>/<FileName>
type ConfigTracker struct {
	MetadataDir string `mapstructure:"metadata_dir"`
	FileName    string `mapstructure:"file_name"`
}

// DefaultConfigTracker 返回 .che/fileWatcherExcludes 约定
func DefaultConfigTracker() ConfigTracker {
	return ConfigTracker{MetadataDir: DefaultMetadataDir, FileName: DefaultExcludesFileName}
}

// LoadConfig 依次读取默认值、配置文件(path 非空时)和 FSWATCH_* 环境变量
func LoadConfig(path string) (Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaultConfiguration(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, errors.Wrapf(err, "read config %s", path)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "decode config")
	}
	if len(cfg.Watcher.WatchPaths) == 0 {
		cfg.Watcher.WatchPaths = []string{cfg.ProjectsRoot}
	}
	return cfg, cfg.Validate()
}

func setDefaultConfiguration(v *viper.Viper) {
	v.SetDefault("projects_root", "/projects")
	v.SetDefault("log_level", "info")
	v.SetDefault("watcher.watch_paths", []string{})
	v.SetDefault("watcher.ignore_patterns", []string{"**/.git", "**/.git/**", "**/node_modules/**"})
	v.SetDefault("watcher.debounce", defaultDebounce)
	v.SetDefault("watcher.worker_count", defaultWorkerCount)
	v.SetDefault("tracker.metadata_dir", DefaultMetadataDir)
	v.SetDefault("tracker.file_name", DefaultExcludesFileName)
}

// Validate 检查配置中会导致约定路径失效的取值
func (c Config) Validate() error {
	if c.Watcher.WorkerCount < 0 {
		return errors.Wrapf(ErrInvalidConfig, "watcher.worker_count must not be negative, got %d", c.Watcher.WorkerCount)
	}
	return c.Tracker.Validate()
}

// Validate 元数据目录与文件名都必须是单个路径段
func (c ConfigTracker) Validate() error {
	for key, val := range map[string]string{"tracker.metadata_dir": c.MetadataDir, "tracker.file_name": c.FileName} {
		if val == "" {
			return errors.Wrapf(ErrInvalidConfig, "%s is empty", key)
		}
		if strings.ContainsRune(val, '/') || strings.ContainsRune(val, filepath.Separator) {
			return errors.Wrapf(ErrInvalidConfig, "%s must be a single path element, got %q", key, val)
		}
	}
	return nil
}
