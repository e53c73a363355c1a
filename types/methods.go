package types

// Count returns how many times `token` occurs in the sequence.
func (tokens Tokens) Count(token Token) int {
	ct := 0
	for _, t := range tokens {
		if t == token {
			ct++
		}
	}
	return ct
}
