// ABOUTME: Agent kinds reported by agent_switch frames
// ABOUTME: Only browser and code agents change what the client shows

package protocol

// AgentKind is the backend's agent_type string.
type AgentKind string

const (
	AgentNone     AgentKind = ""
	AgentCode     AgentKind = "code_agent"
	AgentBrowser  AgentKind = "browser_agent"
	AgentData     AgentKind = "data_agent"
	AgentDesign   AgentKind = "design_agent"
	AgentPlanner  AgentKind = "planner_agent"
	AgentResearch AgentKind = "research_agent"
	AgentCasual   AgentKind = "casual_agent"
	AgentFile     AgentKind = "file_agent"
	AgentMCP      AgentKind = "mcp_agent"
)

var agentLabels = map[AgentKind]string{
	AgentCode:     "Code",
	AgentBrowser:  "Browser",
	AgentData:     "Data",
	AgentDesign:   "Design",
	AgentPlanner:  "Planner",
	AgentResearch: "Research",
	AgentCasual:   "Chat",
	AgentFile:     "Files",
	AgentMCP:      "MCP",
}

// Label returns a short display name. Unknown kinds render as themselves.
func (k AgentKind) Label() string {
	if l, ok := agentLabels[k]; ok {
		return l
	}
	return string(k)
}
