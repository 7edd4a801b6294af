// ABOUTME: Which panel is visible, derived from user choice and agent activity
// ABOUTME: Reduce is pure; ScreenshotWanted drives the screenshot loop

package view

import "github.com/mauromedda/seekdeck/internal/protocol"

// View is the active panel.
type View int

const (
	Chat View = iota
	Preview
	Editor
	Files
	Browser
)

// All lists views in tab order.
var All = []View{Chat, Preview, Editor, Files, Browser}

func (v View) String() string {
	switch v {
	case Chat:
		return "chat"
	case Preview:
		return "preview"
	case Editor:
		return "editor"
	case Files:
		return "files"
	case Browser:
		return "browser"
	default:
		return "unknown"
	}
}

// Title is the tab label.
func (v View) Title() string {
	switch v {
	case Chat:
		return "Chat"
	case Preview:
		return "Preview"
	case Editor:
		return "Editor"
	case Files:
		return "Files"
	case Browser:
		return "Browser"
	default:
		return "?"
	}
}

// Input is anything that can move the view.
type Input struct {
	kind   inputKind
	target View
	agent  protocol.AgentKind
}

type inputKind int

const (
	inputSelect inputKind = iota
	inputAgentSwitch
	inputPreviewReady
)

// Select is an explicit user choice.
func Select(v View) Input { return Input{kind: inputSelect, target: v} }

// AgentSwitch is an agent_switch frame.
func AgentSwitch(kind protocol.AgentKind) Input { return Input{kind: inputAgentSwitch, agent: kind} }

// PreviewReady is a preview_ready frame.
func PreviewReady() Input { return Input{kind: inputPreviewReady} }

// Reduce returns the view after in.
func Reduce(cur View, in Input) View {
	switch in.kind {
	case inputSelect:
		if in.target < Chat || in.target > Browser {
			return cur
		}
		return in.target
	case inputAgentSwitch:
		switch in.agent {
		case protocol.AgentBrowser:
			return Browser
		case protocol.AgentCode:
			return Preview
		}
	case inputPreviewReady:
		return Preview
	}
	return cur
}

// ScreenshotWanted reports whether live screenshots should be fetched.
func ScreenshotWanted(v View, agent protocol.AgentKind) bool {
	return v == Browser || agent == protocol.AgentBrowser
}
