package babi_dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Two stories in the bAbI format, the second one not followed by another
// story marker.
const twoStories = "1 Mary moved to the bathroom.\n" +
	"2 John went to the hallway.\n" +
	"3 Where is Mary? \tbathroom\t1\n" +
	"1 Daniel went back to the garden.\n" +
	"2 Is Daniel in the garden? yes\t1\n"

// writeCorpus writes `files` (name to contents) under `dir`, creating
// subdirectories as needed, and returns their paths in argument order.
func writeCorpus(t testing.TB, dir string, files ...string) []string {
	require.Equal(t, 0, len(files)%2, "files must be name/content pairs")
	paths := make([]string, 0, len(files)/2)
	for idx := 0; idx < len(files); idx += 2 {
		path := filepath.Join(dir, filepath.FromSlash(files[idx]))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(files[idx+1]), 0644))
		paths = append(paths, path)
	}
	return paths
}

func lexiconFrom(t testing.TB, texts ...string) *Lexicon {
	builder := NewLexiconBuilder()
	for _, text := range texts {
		require.NoError(t, builder.AddReader(strings.NewReader(text)))
	}
	return builder.Finalize()
}
