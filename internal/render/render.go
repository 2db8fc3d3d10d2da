package render

// Markdown renders markdown content for terminal display using a pooled
// renderer. Plain options return the content unchanged.
func Markdown(content string, opts Options) (string, error) {
	if opts.Plain {
		return content, nil
	}

	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// MarkdownWithWidth renders with default options at the given width.
func MarkdownWithWidth(content string, width int) (string, error) {
	return Markdown(content, DefaultOptions().WithWidth(width))
}
