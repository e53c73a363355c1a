package babi_dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wbrown/babi_dataset/types"
	"github.com/yargevad/filepathx"
)

type PathInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// GlobTexts
// Given a directory path, recursively finds all `.txt` files, returning a
// slice of PathInfo.
func GlobTexts(dirPath string) (pathInfos []PathInfo, err error) {
	if stat, statErr := os.Stat(dirPath); statErr != nil {
		return nil, statErr
	} else if !stat.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dirPath)
	}
	textPaths, err := filepathx.Glob(dirPath + "/**/*.txt")
	if err != nil {
		return nil, err
	}
	pathInfos = make([]PathInfo, 0, len(textPaths))
	seen := make(map[string]bool, len(textPaths))
	for _, currPath := range textPaths {
		currPath = filepath.Clean(currPath)
		if seen[currPath] {
			continue
		}
		seen[currPath] = true
		stat, statErr := os.Stat(currPath)
		if statErr != nil {
			return nil, statErr
		}
		if stat.IsDir() {
			continue
		}
		pathInfos = append(pathInfos, PathInfo{
			Path:    currPath,
			Size:    stat.Size(),
			ModTime: stat.ModTime(),
		})
	}
	if len(pathInfos) == 0 {
		return nil, fmt.Errorf("%s does not contain any .txt files", dirPath)
	}
	return pathInfos, nil
}

// SortPathInfoByPath orders files by path, ascending.
func SortPathInfoByPath(pathInfos []PathInfo) {
	sort.Slice(pathInfos, func(i, j int) bool {
		return pathInfos[i].Path < pathInfos[j].Path
	})
}

func GetPaths(pathInfos []PathInfo) []string {
	paths := make([]string, len(pathInfos))
	for idx := range pathInfos {
		paths[idx] = pathInfos[idx].Path
	}
	return paths
}

// TotalSize is the combined size in bytes of every file.
func TotalSize(pathInfos []PathInfo) uint64 {
	var total uint64
	for idx := range pathInfos {
		total += uint64(pathInfos[idx].Size)
	}
	return total
}

// Split
// The persisted layout of a dataset: test files keep their own story list,
// keyed by base file name, while training files are either joined into
// one list or kept per file.
type Split struct {
	Train      types.Stories
	TrainFiles map[string]types.Stories
	Tests      map[string]types.Stories
	TestNames  []string
	TrainNames []string
}

// Partition
// Sorts the dataset's files into test and train sets by their `test.txt`
// and `train.txt` suffixes. Files matching neither are left out.
func Partition(ds *Dataset, jointTrain bool) *Split {
	split := &Split{
		Train:      make(types.Stories, 0),
		TrainFiles: make(map[string]types.Stories),
		Tests:      make(map[string]types.Stories),
	}
	for _, path := range ds.Paths {
		name := filepath.Base(path)
		stories := ds.Files[path]
		switch {
		case strings.HasSuffix(path, "test.txt"):
			if _, ok := split.Tests[name]; !ok {
				split.TestNames = append(split.TestNames, name)
			}
			split.Tests[name] = append(split.Tests[name], stories...)
		case strings.HasSuffix(path, "train.txt"):
			if jointTrain {
				split.Train = append(split.Train, stories...)
				continue
			}
			if _, ok := split.TrainFiles[name]; !ok {
				split.TrainNames = append(split.TrainNames, name)
			}
			split.TrainFiles[name] = append(split.TrainFiles[name],
				stories...)
		}
	}
	return split
}
