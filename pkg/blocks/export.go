package blocks

import (
	"fmt"
	"html"
	"strings"

	"github.com/ana-fx/mail-blast-sub001/pkg/sanitize"
)

// Tracking placeholder tokens. These are left verbatim in the exported HTML
// for the sending pipeline to substitute at send time.
const (
	trackURLPrefix = "{{TRACK_URL:"
	openPixelToken = "{{OPEN_PIXEL}}"
)

// headingSizes maps the four-tier heading size key to a pixel font size.
// Unrecognized keys fall back to the md tier.
var headingSizes = map[string]int{
	"sm": 18,
	"md": 24,
	"lg": 30,
	"xl": 36,
}

const defaultHeadingSize = 24

const documentPreamble = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { margin: 0; padding: 0; background-color: #f4f4f5; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
.container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
img { max-width: 100%; height: auto; }
@media only screen and (max-width: 600px) { .container { width: 100% !important; } }
</style>
</head>
<body>
<div class="container">
`

const documentClose = `</div>
` + openPixelToken + `
</body>
</html>
`

// Export renders an ordered block tree into a complete HTML email document.
// It is a pure function: the same block array always yields byte-identical
// output. Unknown block kinds render as empty strings rather than failing, so
// one malformed block never aborts the whole export.
func Export(blocks []Block) string {
	var sb strings.Builder

	sb.WriteString(documentPreamble)

	for _, block := range blocks {
		sb.WriteString(renderBlock(block))
	}

	sb.WriteString(documentClose)

	return sb.String()
}

func renderBlock(block Block) string {
	switch block.Kind {
	case KindSection:
		return renderSection(block)
	case KindHeading:
		return renderHeading(block)
	case KindParagraph:
		return renderParagraph(block)
	case KindButton:
		return renderButton(block)
	case KindImage:
		return renderImage(block)
	case KindSpacer:
		return renderSpacer(block)
	default:
		// Best effort: skip what we do not understand.
		return ""
	}
}

func renderSection(block Block) string {
	var sb strings.Builder

	background := block.stringProp("backgroundColor", "#ffffff")
	padding := block.intProp("padding", 24)

	fmt.Fprintf(&sb, `<div style="background-color: %s; padding: %dpx;">`,
		html.EscapeString(background), padding)
	sb.WriteString("\n")

	for _, child := range block.Children {
		sb.WriteString(renderBlock(child))
	}

	sb.WriteString("</div>\n")

	return sb.String()
}

func renderHeading(block Block) string {
	size, ok := headingSizes[block.stringProp("size", "md")]
	if !ok {
		size = defaultHeadingSize
	}

	text := html.EscapeString(block.stringProp("text", ""))
	color := html.EscapeString(block.stringProp("color", "#111827"))
	align := html.EscapeString(block.stringProp("align", "left"))

	return fmt.Sprintf(
		"<h2 style=\"font-size: %dpx; color: %s; text-align: %s; margin: 0 0 16px 0;\">%s</h2>\n",
		size, color, align, text)
}

func renderParagraph(block Block) string {
	var text string
	if raw := block.stringProp("html", ""); raw != "" {
		// Rich content arrives as HTML and passes through the allow-list
		// sanitizer instead of being escaped wholesale.
		text = sanitize.HTML(raw)
	} else {
		// Escape before substituting newlines so the inserted tags survive.
		text = html.EscapeString(block.stringProp("text", ""))
		text = strings.ReplaceAll(text, "\n", "<br>")
	}

	color := html.EscapeString(block.stringProp("color", "#374151"))
	align := html.EscapeString(block.stringProp("align", "left"))

	return fmt.Sprintf(
		"<p style=\"font-size: 16px; line-height: 1.6; color: %s; text-align: %s; margin: 0 0 16px 0;\">%s</p>\n",
		color, align, text)
}

func renderButton(block Block) string {
	label := html.EscapeString(block.stringProp("label", "Click here"))
	url := block.stringProp("url", "")
	color := html.EscapeString(block.stringProp("color", "#2563eb"))
	align := html.EscapeString(block.stringProp("align", "center"))

	// The URL is wrapped in a tracking placeholder, not resolved here; the
	// sending pipeline substitutes the live redirect target. URLs that fail
	// validation are dropped rather than wrapped, so the pipeline never
	// redirects through an unsafe target.
	href := "#"
	if sanitize.IsValidURL(url) {
		href = trackURLPrefix + url + "}}"
	}

	var style string
	if block.boolProp("outline") {
		style = fmt.Sprintf(
			"display: inline-block; padding: 10px 22px; border: 2px solid %s; border-radius: 6px; color: %s; background-color: transparent; text-decoration: none; font-weight: 600;",
			color, color)
	} else {
		style = fmt.Sprintf(
			"display: inline-block; padding: 12px 24px; border-radius: 6px; color: #ffffff; background-color: %s; text-decoration: none; font-weight: 600;",
			color)
	}

	return fmt.Sprintf(
		"<div style=\"text-align: %s; margin: 0 0 16px 0;\"><a href=\"%s\" style=\"%s\">%s</a></div>\n",
		align, href, style, label)
}

func renderImage(block Block) string {
	src := block.stringProp("src", "")
	if !sanitize.IsValidURL(src) {
		// No usable source: omit the block entirely, wrapper included, so
		// the layout is unchanged.
		return ""
	}

	alt := html.EscapeString(block.stringProp("alt", ""))
	align := html.EscapeString(block.stringProp("align", "center"))

	return fmt.Sprintf(
		"<div style=\"text-align: %s; margin: 0 0 16px 0;\"><img src=\"%s\" alt=\"%s\" style=\"max-width: 100%%;\"></div>\n",
		align, html.EscapeString(src), alt)
}

func renderSpacer(block Block) string {
	height := block.intProp("height", 32)

	return fmt.Sprintf("<div style=\"height: %dpx;\"></div>\n", height)
}
