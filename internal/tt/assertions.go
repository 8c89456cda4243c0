package tt

import (
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rickchristie/arkaine"
	"github.com/stretchr/testify/assert"
)

// AssertTextEqual compares two multi-line strings and reports a unified diff on mismatch.
// Use it for prompts and rendered messages, where testify's single-line output is hard to
// read.
func AssertTextEqual(t *testing.T, expected, actual string, msgAndArgs ...any) bool {
	t.Helper()
	if expected == actual {
		return true
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	})
	if err != nil {
		return assert.Equal(t, expected, actual, msgAndArgs...)
	}
	return assert.Fail(t, "text mismatch:\n"+diff, msgAndArgs...)
}

// AssertMessagesEqual compares message histories role by role, diffing contents.
func AssertMessagesEqual(t *testing.T, expected, actual []arkaine.Message) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), "message count") {
		return false
	}
	ok := true
	for i := range expected {
		ok = assert.Equal(t, expected[i].Role, actual[i].Role, "role of message %d", i) && ok
		ok = AssertTextEqual(t, expected[i].Content, actual[i].Content, "content of message %d", i) && ok
	}
	return ok
}

// Roles returns the roles of msgs in order.
func Roles(msgs []arkaine.Message) []arkaine.Role {
	out := make([]arkaine.Role, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}
