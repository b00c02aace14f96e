// internal/models/question.go
package models

// Example is a single input/output pair shown alongside a question.
type Example struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

// Question is a practice problem assigned to a room. A room keeps its own copy,
// so a question never changes once a duel has started.
type Question struct {
	Title      string    `json:"title" yaml:"title"`
	Difficulty string    `json:"difficulty" yaml:"difficulty"`
	Statement  string    `json:"statement" yaml:"statement"`
	Examples   []Example `json:"examples" yaml:"examples"`
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	if q.Examples != nil {
		out.Examples = make([]Example, len(q.Examples))
		copy(out.Examples, q.Examples)
	}
	return out
}
