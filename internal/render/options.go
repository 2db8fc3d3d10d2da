// Package render turns conversation messages into terminal text: markdown
// through glamour, charts and tables through lipgloss.
package render

// Options configures rendering
type Options struct {
	// Width is the maximum output width (default: 80)
	Width int

	// Style is a glamour style name or a path to a JSON style file
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool

	// Plain skips glamour and emits raw markdown, for pipes and exports
	Plain bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            StyleDark,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	if width > 0 {
		o.Width = width
	}
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// WithPlain returns Options with glamour rendering turned off or on.
func (o Options) WithPlain(plain bool) Options {
	o.Plain = plain
	return o
}

// contentWidth is the width available to charts and tables inside the
// glamour margins.
func (o Options) contentWidth() int {
	if o.Width <= 0 {
		return 76
	}
	if o.Width < 24 {
		return o.Width
	}
	return o.Width - 4
}
