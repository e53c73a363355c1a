package babi_dataset

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Reserved symbols appended to every lexicon after the organic tokens, in
// this order.
const (
	QuestionMark = "?"
	Period       = "."
	AnswerMask   = "-"
	StoryMarker  = "1"
)

type TokenClass uint8

const (
	ClassOther TokenClass = iota
	ClassWord
	ClassQuestionMark
	ClassPeriod
	ClassStoryMarker
)

func (class TokenClass) String() string {
	switch class {
	case ClassWord:
		return "word"
	case ClassQuestionMark:
		return "question-mark"
	case ClassPeriod:
		return "period"
	case ClassStoryMarker:
		return "story-marker"
	default:
		return "other"
	}
}

// Admitted reports whether tokens of this class are written into a story.
func (class TokenClass) Admitted() bool {
	return class == ClassWord || class == ClassQuestionMark ||
		class == ClassPeriod
}

// separator spaces out `.` and `?` so they become fields of their own, and
// drops `,` entirely.
var separator = strings.NewReplacer(
	".", " .",
	"?", " ?",
	",", "",
)

// SplitLine
// Applies the punctuation separation to a raw line and splits it on
// whitespace.
func SplitLine(line string) []string {
	return strings.Fields(separator.Replace(line))
}

// IsAlphabetic reports whether every rune of `word` is a letter. The empty
// string is not alphabetic.
func IsAlphabetic(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ClassifyToken
// Classifies a field given its position within the line. Only a literal
// `1` in the first position starts a story.
func ClassifyToken(word string, position int) TokenClass {
	switch {
	case word == StoryMarker && position == 0:
		return ClassStoryMarker
	case word == QuestionMark:
		return ClassQuestionMark
	case word == Period:
		return ClassPeriod
	case IsAlphabetic(word):
		return ClassWord
	default:
		return ClassOther
	}
}

// newFolder returns the caser used to case-fold words before lexicon
// lookup. Casers carry state, so each builder and encoder owns one.
func newFolder() cases.Caser {
	return cases.Lower(language.Und)
}
