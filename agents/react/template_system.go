package react

import (
	_ "embed"
	"text/template"

	"github.com/rickchristie/arkaine"
)

//go:embed system.tmpl
var systemTemplateContent string

// SystemPromptData contains the data passed to the system prompt template.
type SystemPromptData struct {
	// BehaviorAndContext contains behavior instructions and context provided by the user.
	BehaviorAndContext string

	// CriticalRules contains rules the agent must follow.
	CriticalRules string

	// OutputPrompt explains the reply protocol (from the DecisionFormat).
	OutputPrompt string

	// ToolsPrompt is the tool catalog (from the toolchain.Set).
	ToolsPrompt string

	// Time provides access to time-related functions in templates.
	// Use {{.Time.Today}}, {{.Time.Weekday}}, {{.Time.Format "2006-01-02"}}, etc.
	Time arkaine.TimeProvider
}

// DefaultSystemTemplate explains the Think-Act-Observe loop, lists the tools and describes
// the reply protocol. Replace it with Agent.WithSystemTemplate.
var DefaultSystemTemplate = template.Must(
	template.New("react_system").Parse(systemTemplateContent),
)
