package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/babi_dataset"
	"github.com/wbrown/babi_dataset/types"
)

const story = "1 Mary moved to the bathroom.\n" +
	"2 Where is Mary? bathroom\t1\n"

func encodeFixture(t *testing.T) (*babi_dataset.Lexicon,
	*babi_dataset.Dataset) {
	builder := babi_dataset.NewLexiconBuilder()
	require.NoError(t, builder.AddReader(strings.NewReader(story)))
	lex := builder.Finalize()
	encoder, err := babi_dataset.NewStoryEncoder(lex, nil)
	require.NoError(t, err)
	stories, lengths, err := encoder.EncodeReader("qa1_train.txt",
		strings.NewReader(story))
	require.NoError(t, err)
	return lex, &babi_dataset.Dataset{
		Paths: []string{"in/qa1_test.txt", "in/qa1_train.txt"},
		Files: map[string]types.Stories{
			"in/qa1_test.txt":  stories,
			"in/qa1_train.txt": append(append(types.Stories{}, stories...),
				stories...),
		},
		Lengths: append(lengths, lengths...),
	}
}

func TestMarshalStoriesRoundTrip(t *testing.T) {
	_, ds := encodeFixture(t)
	stories := ds.Files["in/qa1_train.txt"]
	packed, err := MarshalStories(stories)
	require.NoError(t, err)
	decoded, err := ReadStories(bytes.NewReader(packed))
	require.NoError(t, err)
	assert.Equal(t, stories, decoded)

	packed, err = MarshalStories(nil)
	require.NoError(t, err)
	decoded, err = ReadStories(bytes.NewReader(packed))
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestReadStoriesMalformed(t *testing.T) {
	_, err := ReadStories(strings.NewReader("not msgpack"))
	assert.Error(t, err)
}

func TestWriteDatasetJoint(t *testing.T) {
	lex, ds := encodeFixture(t)
	root := t.TempDir()
	sink := NewFileSink(root)
	split := babi_dataset.Partition(ds, true)
	require.NoError(t, WriteDataset(context.Background(), sink, lex, split,
		true))

	for _, name := range []string{
		"lexicon.txt",
		"lexicon-dict.json",
		"train/train.msgpack",
		"train/train_raw_data/train.txt",
		"test/qa1_test.txt.msgpack",
		"test/test_raw_data/qa1_test.txt.txt",
	} {
		_, statErr := os.Stat(filepath.Join(root, filepath.FromSlash(name)))
		assert.NoError(t, statErr, name)
	}

	lexFile, err := os.Open(filepath.Join(root, LexiconJSON))
	require.NoError(t, err)
	defer lexFile.Close()
	loaded, err := babi_dataset.LoadLexicon(lexFile)
	require.NoError(t, err)
	assert.Equal(t, lex.Tokens(), loaded.Tokens())

	trainFile, err := os.Open(filepath.Join(root, "train", "train.msgpack"))
	require.NoError(t, err)
	defer trainFile.Close()
	train, err := ReadStories(trainFile)
	require.NoError(t, err)
	assert.Equal(t, ds.Files["in/qa1_train.txt"], train)

	raw, err := os.ReadFile(filepath.Join(root, "train", "train_raw_data",
		"train.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `sentence:{"inputs":[0,`),
		lines[0])
}

func TestWriteDatasetPerFile(t *testing.T) {
	lex, ds := encodeFixture(t)
	client := NewS3MockClient()
	sink := &S3Sink{Client: client, Bucket: "bucket", Prefix: "babi"}
	split := babi_dataset.Partition(ds, false)
	require.NoError(t, WriteDataset(context.Background(), sink, lex, split,
		false))
	for _, key := range []string{
		"bucket/babi/lexicon.txt",
		"bucket/babi/lexicon-dict.json",
		"bucket/babi/train/qa1_train.txt.msgpack",
		"bucket/babi/train/train_raw_data/qa1_train.txt.txt",
		"bucket/babi/test/qa1_test.txt.msgpack",
		"bucket/babi/test/test_raw_data/qa1_test.txt.txt",
	} {
		assert.Contains(t, client.Objects, key)
	}
	assert.NotContains(t, client.Objects, "bucket/babi/train/train.msgpack")
}
