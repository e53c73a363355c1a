//go:build !wasip1 && !js

package babi_dataset

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

func readMmap(file *os.File) ([]byte, func() error, error) {
	fileMmap, mmapErr := mmap.Map(file, mmap.RDONLY, 0)
	if mmapErr != nil {
		return nil, nil, mmapErr
	}
	return fileMmap, fileMmap.Unmap, nil
}
