package render

import (
	"github.com/diogo/dstchat/internal/config"
)

// OptionsFromConfig builds render options from user configuration. The
// config is expected to have environment overrides applied already.
func OptionsFromConfig(cfg config.Config, width int) Options {
	opts := DefaultOptions().WithWidth(width)

	md := cfg.Markdown
	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap
	opts.InlineTableLinks = md.InlineTableLinks

	return opts
}
