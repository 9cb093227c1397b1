package markdown

// Result holds the output of a rendering pass.
type Result struct {
	Markdown string    `json:"markdown"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// WarningType categorizes rendering warnings.
type WarningType string

const (
	WarningUnknownBlock        WarningType = "unknown_block"
	WarningUnresolvedReference WarningType = "unresolved_reference"
	WarningUnresolvedLink      WarningType = "unresolved_link"
	WarningDroppedFeature      WarningType = "dropped_feature"
	WarningHookFailed          WarningType = "hook_failed"
)

// Warning represents a non-fatal issue encountered during rendering.
type Warning struct {
	Type      WarningType `json:"type"`
	BlockType string      `json:"blockType,omitempty"`
	Message   string      `json:"message"`
}
