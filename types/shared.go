package types

// Token is a lexicon id.
type Token uint32
type Tokens []Token
type TokenMap map[string]Token

// Story is one encoded example: the narrative and question ids with
// answers masked, and the diverted answer ids.
type Story struct {
	Inputs  Tokens `msgpack:"inputs" json:"inputs"`
	Outputs Tokens `msgpack:"outputs" json:"outputs"`
}

type Stories []Story

// Len is the story length used for length filtering.
func (story *Story) Len() int {
	return len(story.Inputs)
}
