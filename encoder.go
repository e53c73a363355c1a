package babi_dataset

import (
	"errors"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru"
	"github.com/wbrown/babi_dataset/types"
	"golang.org/x/text/cases"
)

const DEFAULT_CACHE_SZ = 4096

var ErrUnknownToken = errors.New("token not in lexicon")

// LookupError is returned when an admitted token has no lexicon entry,
// which means the lexicon was not built over the same files.
type LookupError struct {
	Token string
	Path  string
	Line  int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s:%d: %q: %v", e.Path, e.Line, e.Token,
		ErrUnknownToken)
}

func (e *LookupError) Unwrap() error {
	return ErrUnknownToken
}

// Dataset
// Encoded stories per source file, with the length of every story seen,
// including those dropped by the length limit.
type Dataset struct {
	Paths   []string
	Files   map[string]types.Stories
	Lengths []int
}

// Stories returns every kept story in file order.
func (ds *Dataset) Stories() types.Stories {
	all := make(types.Stories, 0)
	for _, path := range ds.Paths {
		all = append(all, ds.Files[path]...)
	}
	return all
}

// StoryEncoder
// Segments files into stories and encodes them against a finalized
// lexicon.
type StoryEncoder struct {
	Lexicon *Lexicon
	// LengthLimit, when set, drops stories whose inputs are longer.
	LengthLimit *int
	// FlushAtEOF closes the story still open at the end of each file.
	// When false, the last story of every file is dropped.
	FlushAtEOF bool
	Progress   func(done, total int)
	Cache      *lru.ARCCache
	LruHits    int
	LruMisses  int
	folder     cases.Caser
}

func NewStoryEncoder(lex *Lexicon, lengthLimit *int) (*StoryEncoder,
	error) {
	return NewStoryEncoderWithCache(lex, lengthLimit, DEFAULT_CACHE_SZ)
}

func NewStoryEncoderWithCache(lex *Lexicon, lengthLimit *int,
	cacheSz int) (*StoryEncoder, error) {
	if lex == nil || lex.Len() < len(reservedSymbols) {
		return nil, ErrNotFinalized
	}
	if lengthLimit != nil && *lengthLimit < 0 {
		return nil, fmt.Errorf("length limit must not be negative: %d",
			*lengthLimit)
	}
	cache, cacheErr := lru.NewARC(cacheSz)
	if cacheErr != nil {
		return nil, cacheErr
	}
	return &StoryEncoder{
		Lexicon:     lex,
		LengthLimit: lengthLimit,
		FlushAtEOF:  true,
		Cache:       cache,
		folder:      newFolder(),
	}, nil
}

// lookup folds `word` and returns its id, consulting the cache first.
func (encoder *StoryEncoder) lookup(word string) (types.Token, bool) {
	if cached, ok := encoder.Cache.Get(word); ok {
		encoder.LruHits++
		return cached.(types.Token), true
	}
	encoder.LruMisses++
	id, ok := encoder.Lexicon.Get(encoder.folder.String(word))
	if ok {
		encoder.Cache.Add(word, id)
	}
	return id, ok
}

func (encoder *StoryEncoder) withinLimit(length int) bool {
	return encoder.LengthLimit == nil || length <= *encoder.LengthLimit
}

// EncodeReader
// Runs the story state machine over one file's contents. It returns the
// kept stories and the lengths of all closed stories. `path` is only used
// for error reporting.
func (encoder *StoryEncoder) EncodeReader(path string,
	reader io.Reader) (types.Stories, []int, error) {
	machine := newStoryMachine(encoder)
	lineErr := eachLine(reader, func(lineNo int, line string) error {
		machine.beginLine()
		for position, word := range SplitLine(line) {
			if err := machine.feed(word, position); err != nil {
				return &LookupError{Token: word, Path: path, Line: lineNo}
			}
		}
		return nil
	})
	if lineErr != nil {
		return nil, nil, lineErr
	}
	if encoder.FlushAtEOF {
		machine.closeStory()
	}
	return machine.stories, machine.lengths, nil
}

func (encoder *StoryEncoder) EncodeFile(path string) (types.Stories,
	[]int, error) {
	var stories types.Stories
	var lengths []int
	err := readText(path, func(reader io.Reader) error {
		var encodeErr error
		stories, lengths, encodeErr = encoder.EncodeReader(path, reader)
		return encodeErr
	})
	return stories, lengths, err
}

// EncodeFiles encodes every file in order. Any error aborts the run.
func (encoder *StoryEncoder) EncodeFiles(paths []string) (*Dataset, error) {
	ds := &Dataset{
		Paths:   append([]string{}, paths...),
		Files:   make(map[string]types.Stories, len(paths)),
		Lengths: make([]int, 0),
	}
	for idx, path := range paths {
		stories, lengths, err := encoder.EncodeFile(path)
		if err != nil {
			return nil, err
		}
		ds.Files[path] = append(ds.Files[path], stories...)
		ds.Lengths = append(ds.Lengths, lengths...)
		if encoder.Progress != nil {
			encoder.Progress(idx+1, len(paths))
		}
	}
	return ds, nil
}

// storyMachine holds the per-file segmentation state.
//
// A story is opened by a story marker and closed by the next marker or, if
// the encoder flushes, by the end of the file. The answer window is opened
// by the first `?` admitted on a line and is closed at the start of every
// line; while it is open admitted tokens go to the outputs and the inputs
// receive the answer mask instead.
type storyMachine struct {
	encoder    *StoryEncoder
	open       bool
	current    types.Story
	answerOpen bool
	stories    types.Stories
	lengths    []int
}

func newStoryMachine(encoder *StoryEncoder) *storyMachine {
	return &storyMachine{
		encoder: encoder,
		stories: make(types.Stories, 0),
		lengths: make([]int, 0),
	}
}

func (machine *storyMachine) beginLine() {
	machine.answerOpen = false
}

func (machine *storyMachine) closeStory() {
	if !machine.open {
		return
	}
	length := machine.current.Len()
	machine.lengths = append(machine.lengths, length)
	if machine.encoder.withinLimit(length) {
		machine.stories = append(machine.stories, machine.current)
	}
	machine.open = false
	machine.current = types.Story{}
}

func (machine *storyMachine) openStory() {
	machine.closeStory()
	machine.open = true
	machine.current = types.Story{
		Inputs:  make(types.Tokens, 0),
		Outputs: make(types.Tokens, 0),
	}
}

// feed processes one field. It only fails when an admitted token is not
// in the lexicon.
func (machine *storyMachine) feed(word string, position int) error {
	class := ClassifyToken(word, position)
	if class == ClassStoryMarker {
		machine.openStory()
		return nil
	}
	if !class.Admitted() {
		return nil
	}
	id, ok := machine.encoder.lookup(word)
	if !ok {
		return ErrUnknownToken
	}
	if machine.open {
		if machine.answerOpen {
			machine.current.Inputs = append(machine.current.Inputs,
				machine.encoder.Lexicon.AnswerMask())
			machine.current.Outputs = append(machine.current.Outputs, id)
		} else {
			machine.current.Inputs = append(machine.current.Inputs, id)
		}
	}
	if !machine.answerOpen {
		machine.answerOpen = class == ClassQuestionMark
	}
	return nil
}
