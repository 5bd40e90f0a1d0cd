package cfgm

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// ErrProjectRootNotFound 表示未找到包含 go.mod 的目录。
var ErrProjectRootNotFound = errors.New("cfgm: project root (go.mod) not found")

// FindProjectRoot 查找项目根目录（go.mod 所在目录）。
//
// skip 为 0 时从直接调用方源文件所在目录向上查找，每增加 1 向上跳过一层调用栈；
// 源文件路径不可用时（例如二进制在其他机器运行）退回到当前工作目录向上查找。
func FindProjectRoot(skip int) (string, error) {
	if _, file, _, ok := runtime.Caller(skip + 1); ok {
		if root, found := findGoModDir(filepath.Dir(file)); found {
			return root, nil
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if root, found := findGoModDir(wd); found {
		return root, nil
	}

	return "", ErrProjectRootNotFound
}

func findGoModDir(dir string) (string, bool) {
	for {
		if info, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil && !info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
