// Package blocks models email template content as a tree of typed blocks and
// renders it deterministically into a self-contained HTML email document.
package blocks

// Kind identifies a block variant.
type Kind string

const (
	KindSection   Kind = "section"
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindButton    Kind = "button"
	KindImage     Kind = "image"
	KindSpacer    Kind = "spacer"
)

// Block is one typed unit of template content. Section blocks nest children;
// every other kind is a leaf. Props carry per-kind presentation values.
type Block struct {
	ID       string         `json:"id,omitempty"`
	Kind     Kind           `json:"kind"`
	Props    map[string]any `json:"props,omitempty"`
	Children []Block        `json:"children,omitempty"`
}

// stringProp returns the string prop for key, or fallback when the key is
// absent or not a string.
func (b Block) stringProp(key, fallback string) string {
	if v, ok := b.Props[key].(string); ok && v != "" {
		return v
	}

	return fallback
}

// intProp returns the numeric prop for key, tolerating the float64 shape
// JSON decoding produces.
func (b Block) intProp(key string, fallback int) int {
	switch v := b.Props[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// boolProp returns the boolean prop for key.
func (b Block) boolProp(key string) bool {
	v, _ := b.Props[key].(bool)

	return v
}
