package fswatch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// DirProjectLister 把工作区根目录下的每个子目录视为一个项目
type DirProjectLister struct {
	fs   afero.Fs
	root string
}

// NewDirProjectLister 创建目录型项目枚举器，fs 为 nil 时使用真实文件系统
func NewDirProjectLister(fs afero.Fs, root string) *DirProjectLister {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &DirProjectLister{fs: fs, root: root}
}

// ListProjects 列出 root 下的非隐藏目录，BaseFolder 为绝对路径
func (l *DirProjectLister) ListProjects() ([]Project, error) {
	root, err := filepath.Abs(l.root)
	if err != nil {
		return nil, errors.Wrapf(ErrListProjects, "resolve %s: %v", l.root, err)
	}
	infos, err := afero.ReadDir(l.fs, root)
	if err != nil {
		return nil, errors.Wrapf(ErrListProjects, "read %s: %v", root, err)
	}
	return lo.FilterMap(infos, func(fi os.FileInfo, _ int) (Project, bool) {
		if !fi.IsDir() || strings.HasPrefix(fi.Name(), ".") {
			return Project{}, false
		}
		return Project{Name: fi.Name(), BaseFolder: filepath.Join(root, fi.Name())}, true
	}), nil
}
