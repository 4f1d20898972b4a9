package cleaner

import (
	"net/url"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// Markdown converts sanitized content to Markdown. One instance is shared
// process-wide; the underlying converter is goroutine-safe.
type Markdown struct {
	conv *converter.Converter
}

// NewMarkdown builds a converter with CommonMark and table support.
// Tables keep minimal cell padding so the output stays compact.
func NewMarkdown() *Markdown {
	return &Markdown{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Convert renders content as Markdown. Relative links left in the markup
// resolve against sourceURL's origin.
func (m *Markdown) Convert(content, sourceURL string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if u, err := url.Parse(sourceURL); err == nil && u.Host != "" {
		opts = append(opts, converter.WithDomain(u.Scheme+"://"+u.Host))
	}
	return m.conv.ConvertString(content, opts...)
}
