package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/wbrown/babi_dataset"
	"github.com/wbrown/babi_dataset/types"
)

const (
	LexiconText  = "lexicon.txt"
	LexiconJSON  = "lexicon-dict.json"
	TrainDir     = "train"
	TestDir      = "test"
	StoriesExt   = ".msgpack"
	RawDataExt   = ".txt"
	JointTrainId = "train"
)

// WriteLexicon writes the lexicon as text, in id order, and as JSON.
func WriteLexicon(ctx context.Context, sink Sink,
	lex *babi_dataset.Lexicon) error {
	var text bytes.Buffer
	if err := lex.WriteText(&text); err != nil {
		return err
	}
	if err := sink.Put(ctx, LexiconText, text.Bytes()); err != nil {
		return err
	}
	encoded, err := json.Marshal(lex)
	if err != nil {
		return errors.Wrap(err, "cannot marshal lexicon")
	}
	return sink.Put(ctx, LexiconJSON, encoded)
}

// MarshalStories encodes stories as a msgpack array of
// `{inputs, outputs}` maps.
func MarshalStories(stories types.Stories) ([]byte, error) {
	if stories == nil {
		stories = types.Stories{}
	}
	return msgpack.Marshal(stories)
}

// ReadStories decodes a story file written by WriteDataset.
func ReadStories(reader io.Reader) (types.Stories, error) {
	stories := make(types.Stories, 0)
	if err := msgpack.NewDecoder(reader).Decode(&stories); err != nil {
		return nil, errors.Wrap(err, "cannot decode stories")
	}
	return stories, nil
}

// rawStories renders one `sentence:<json>` line per story for inspection.
func rawStories(stories types.Stories) ([]byte, error) {
	var buf bytes.Buffer
	for idx := range stories {
		line, err := json.Marshal(&stories[idx])
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "sentence:%s\n", line)
	}
	return buf.Bytes(), nil
}

// writeStories writes `<dir>/<id>.msgpack` and
// `<dir>/<dir>_raw_data/<id>.txt`.
func writeStories(ctx context.Context, sink Sink, dir string, id string,
	stories types.Stories) error {
	packed, err := MarshalStories(stories)
	if err != nil {
		return errors.Wrapf(err, "cannot marshal %s", id)
	}
	if err := sink.Put(ctx, path.Join(dir, id+StoriesExt),
		packed); err != nil {
		return err
	}
	raw, err := rawStories(stories)
	if err != nil {
		return errors.Wrapf(err, "cannot render %s", id)
	}
	return sink.Put(ctx, path.Join(dir, dir+"_raw_data", id+RawDataExt), raw)
}

// WriteDataset
// Persists the lexicon and a partitioned dataset. Joint training data is
// written as `train/train.msgpack`, per-file data under the source file's
// base name.
func WriteDataset(ctx context.Context, sink Sink, lex *babi_dataset.Lexicon,
	split *babi_dataset.Split, jointTrain bool) error {
	if err := WriteLexicon(ctx, sink, lex); err != nil {
		return err
	}
	if jointTrain {
		if err := writeStories(ctx, sink, TrainDir, JointTrainId,
			split.Train); err != nil {
			return err
		}
	} else {
		for _, name := range split.TrainNames {
			if err := writeStories(ctx, sink, TrainDir, name,
				split.TrainFiles[name]); err != nil {
				return err
			}
		}
	}
	for _, name := range split.TestNames {
		if err := writeStories(ctx, sink, TestDir, name,
			split.Tests[name]); err != nil {
			return err
		}
	}
	return nil
}
