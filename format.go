package arkaine

// DecisionFormat describes the text protocol the model must follow and parses replies
// written in it.
type DecisionFormat interface {
	// Describe returns the output protocol instructions included in the system prompt.
	Describe() string

	// Parse converts one model reply into a Decision. Malformed text yields a KindFormat
	// error.
	Parse(text string) (Decision, error)
}
