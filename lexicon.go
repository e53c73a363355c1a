package babi_dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/wbrown/babi_dataset/types"
	"golang.org/x/text/cases"
)

var (
	ErrNotFinalized     = errors.New("lexicon is missing its reserved symbols")
	ErrMalformedLexicon = errors.New("malformed lexicon")
)

// reservedSymbols are appended, in order, when a lexicon is finalized.
var reservedSymbols = []string{QuestionMark, Period, AnswerMask}

// Lexicon
// An immutable token to id mapping. Organic tokens hold the dense ids
// [0, Organic()), followed by `?`, `.` and `-`.
type Lexicon struct {
	encoder types.TokenMap
	decoder []string
	organic int
}

// NewLexicon
// Finalizes a lexicon from organic tokens listed in id order. Tokens must
// be unique and must not collide with the reserved symbols.
func NewLexicon(organic []string) (*Lexicon, error) {
	lex := &Lexicon{
		encoder: make(types.TokenMap, len(organic)+len(reservedSymbols)),
		decoder: make([]string, 0, len(organic)+len(reservedSymbols)),
		organic: len(organic),
	}
	for _, token := range append(append([]string{}, organic...),
		reservedSymbols...) {
		if _, ok := lex.encoder[token]; ok {
			return nil, fmt.Errorf("%w: duplicate token %q",
				ErrMalformedLexicon, token)
		}
		lex.encoder[token] = types.Token(len(lex.decoder))
		lex.decoder = append(lex.decoder, token)
	}
	return lex, nil
}

// Get returns the id of an already case-folded token.
func (lex *Lexicon) Get(token string) (types.Token, bool) {
	id, ok := lex.encoder[token]
	return id, ok
}

// Decode returns the token for an id.
func (lex *Lexicon) Decode(id types.Token) (string, bool) {
	if int(id) >= len(lex.decoder) {
		return "", false
	}
	return lex.decoder[id], true
}

// DecodeTokens maps every id back to its token; unknown ids decode to
// `<id>`.
func (lex *Lexicon) DecodeTokens(tokens types.Tokens) []string {
	words := make([]string, len(tokens))
	for idx, id := range tokens {
		if word, ok := lex.Decode(id); ok {
			words[idx] = word
		} else {
			words[idx] = fmt.Sprintf("<%d>", id)
		}
	}
	return words
}

// Len is the number of entries including the reserved symbols.
func (lex *Lexicon) Len() int {
	return len(lex.decoder)
}

// Organic is the number of tokens discovered in the corpus.
func (lex *Lexicon) Organic() int {
	return lex.organic
}

func (lex *Lexicon) QuestionMark() types.Token {
	return types.Token(lex.organic)
}

func (lex *Lexicon) Period() types.Token {
	return types.Token(lex.organic + 1)
}

func (lex *Lexicon) AnswerMask() types.Token {
	return types.Token(lex.organic + 2)
}

// Tokens returns every token in id order.
func (lex *Lexicon) Tokens() []string {
	return append([]string{}, lex.decoder...)
}

// Map returns a copy of the token to id mapping.
func (lex *Lexicon) Map() types.TokenMap {
	mapping := make(types.TokenMap, len(lex.encoder))
	for token, id := range lex.encoder {
		mapping[token] = id
	}
	return mapping
}

func (lex *Lexicon) MarshalJSON() ([]byte, error) {
	return json.Marshal(lex.encoder)
}

// WriteText writes one `lexicon:<token>  number:<id>` line per entry in
// id order.
func (lex *Lexicon) WriteText(w io.Writer) error {
	for id, token := range lex.decoder {
		if _, err := fmt.Fprintf(w, "lexicon:%s  number:%d\n", token,
			id); err != nil {
			return err
		}
	}
	return nil
}

// LoadLexicon
// Reads a lexicon previously written with MarshalJSON, verifying that the
// ids are dense and end with the reserved symbols.
func LoadLexicon(reader io.Reader) (*Lexicon, error) {
	mapping := make(types.TokenMap)
	if err := json.NewDecoder(reader).Decode(&mapping); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLexicon, err)
	}
	if len(mapping) < len(reservedSymbols) {
		return nil, fmt.Errorf("%w: %d entries", ErrNotFinalized,
			len(mapping))
	}
	decoder := make([]string, len(mapping))
	seen := make([]bool, len(mapping))
	for token, id := range mapping {
		if int(id) >= len(mapping) || seen[id] {
			return nil, fmt.Errorf("%w: id %d for %q is not dense",
				ErrMalformedLexicon, id, token)
		}
		seen[id] = true
		decoder[id] = token
	}
	organic := len(decoder) - len(reservedSymbols)
	for idx, symbol := range reservedSymbols {
		if decoder[organic+idx] != symbol {
			return nil, fmt.Errorf("%w: expected %q at id %d",
				ErrNotFinalized, symbol, organic+idx)
		}
	}
	return NewLexicon(decoder[:organic])
}

// LexiconBuilder
// Assigns ids to alphabetic tokens in first-seen order. A builder may be
// fed any number of files; tokens already present never change id.
type LexiconBuilder struct {
	encoder types.TokenMap
	decoder []string
	folder  cases.Caser
	// Progress, when set, is called after each file of AddFiles.
	Progress func(done, total int)
}

func NewLexiconBuilder() *LexiconBuilder {
	return &LexiconBuilder{
		encoder: make(types.TokenMap),
		decoder: make([]string, 0),
		folder:  newFolder(),
	}
}

// AddLine assigns ids to the new alphabetic tokens of one raw line.
func (builder *LexiconBuilder) AddLine(line string) {
	for _, word := range SplitLine(line) {
		if !IsAlphabetic(word) {
			continue
		}
		folded := builder.folder.String(word)
		if _, ok := builder.encoder[folded]; ok {
			continue
		}
		builder.encoder[folded] = types.Token(len(builder.decoder))
		builder.decoder = append(builder.decoder, folded)
	}
}

func (builder *LexiconBuilder) AddReader(reader io.Reader) error {
	return eachLine(reader, func(_ int, line string) error {
		builder.AddLine(line)
		return nil
	})
}

func (builder *LexiconBuilder) AddFile(path string) error {
	return readText(path, builder.AddReader)
}

// AddFiles scans `paths` in order, stopping at the first I/O error.
func (builder *LexiconBuilder) AddFiles(paths []string) error {
	for idx, path := range paths {
		if err := builder.AddFile(path); err != nil {
			return err
		}
		if builder.Progress != nil {
			builder.Progress(idx+1, len(paths))
		}
	}
	return nil
}

// Len is the number of organic tokens seen so far.
func (builder *LexiconBuilder) Len() int {
	return len(builder.decoder)
}

// Finalize appends the reserved symbols and returns an immutable Lexicon.
// The builder remains usable; later additions do not affect the result.
func (builder *LexiconBuilder) Finalize() *Lexicon {
	lex, err := NewLexicon(builder.decoder)
	if err != nil {
		// Unreachable: organic tokens are unique and alphabetic.
		panic(err)
	}
	return lex
}

// BuildLexicon scans every file in order and returns the finalized
// lexicon.
func BuildLexicon(paths []string) (*Lexicon, error) {
	builder := NewLexiconBuilder()
	if err := builder.AddFiles(paths); err != nil {
		return nil, err
	}
	return builder.Finalize(), nil
}
