package toolbox

import (
	"fmt"

	"github.com/rickchristie/arkaine"
	"github.com/tmc/langchaingo/tools/duckduckgo"
	"github.com/tmc/langchaingo/tools/wikipedia"
)

const (
	wikipediaName        = "wikipedia"
	wikipediaDescription = "Searches Wikipedia for the query and returns the opening " +
		"paragraphs of the best matching articles. Use it for facts about people, places, " +
		"events and concepts."

	webSearchName        = "web_search"
	webSearchDescription = "Searches the web for the query and returns the top results " +
		"with their titles, links and snippets. Use it for recent or niche information."
)

// Wikipedia returns a tool that queries Wikipedia. Wikimedia requires a descriptive
// userAgent with contact information.
func Wikipedia(userAgent string) *arkaine.FuncTool {
	return Adapt(wikipediaName, wikipediaDescription, wikipedia.New(userAgent))
}

// WebSearch returns a tool that searches the web through DuckDuckGo, returning at most
// maxResults results.
func WebSearch(maxResults int, userAgent string) (*arkaine.FuncTool, error) {
	if maxResults < 1 {
		return nil, fmt.Errorf("web search: max results must be positive, got %d", maxResults)
	}
	ddg, err := duckduckgo.New(maxResults, userAgent)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	return Adapt(webSearchName, webSearchDescription, ddg), nil
}
