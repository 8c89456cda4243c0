package react

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed task.tmpl
var taskTemplateContent string

// TaskPromptData contains the data passed to the task prompt template.
type TaskPromptData struct {
	// Task is the input the run was started with.
	Task string
}

// DefaultTaskTemplate renders the first user message of a run. Replace it with
// Agent.WithTaskTemplate.
var DefaultTaskTemplate = template.Must(
	template.New("react_task").Parse(taskTemplateContent),
)

// ExecuteTemplate executes tmpl with data and returns the result.
func ExecuteTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
