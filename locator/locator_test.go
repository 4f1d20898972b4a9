package locator_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/clipper/locator"
)

// Ensure strategies implement locator.Strategy at compile time.
var (
	_ locator.Strategy = (*locator.SelectorStrategy)(nil)
	_ locator.Strategy = (*locator.KeywordStrategy)(nil)
	_ locator.Strategy = (*locator.LargestTextStrategy)(nil)
	_ locator.Strategy = (*locator.ReadabilityStrategy)(nil)
	_ locator.Strategy = (*locator.TrafilaturaStrategy)(nil)
)

func parse(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestLocate_SelectorPriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "articleBody outranks article",
			markup: `<article><p>outer</p><div itemprop="articleBody"><p>body</p></div></article>`,
			want:   "body",
		},
		{
			name:   "article outranks main",
			markup: `<main><p>main text</p></main><article><p>article text</p></article>`,
			want:   "article text",
		},
		{
			name:   "main-content id",
			markup: `<div id="main-content"><p>by id</p></div><div class="other">x</div>`,
			want:   "by id",
		},
		{
			name:   "first of several matches",
			markup: `<article><p>one</p></article><article><p>two</p></article>`,
			want:   "one",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, ok := locator.New().Locate(parse(t, tt.markup))
			require.True(t, ok)
			assert.Equal(t, "selector", c.Strategy)
			assert.Equal(t, tt.want, strings.TrimSpace(c.Selection.Text()))
		})
	}
}

func TestLocate_KeywordFallback(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<body>
		<div class="sidebar-content">side</div>
		<div id="blog-entry-42"><p>entry text</p></div>
	</body>`)

	c, ok := locator.New().Locate(doc)
	require.True(t, ok)
	assert.Equal(t, "keyword", c.Strategy)
	assert.Equal(t, "entry text", strings.TrimSpace(c.Selection.Text()))
}

func TestLocate_KeywordSkipsInlineElements(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("Body paragraph with enough words to matter. ", 10)
	doc := parse(t, `<body class="post-template">
		<div class="meta"><span class="posted-on">Jan 1 2024</span> <a class="post-link" href="/p">link</a></div>
		<div id="post-body"><p>`+body+`</p></div>
	</body>`)

	c, ok := locator.New().Locate(doc)
	require.True(t, ok)
	assert.Equal(t, "keyword", c.Strategy)
	assert.Equal(t, "div", goquery.NodeName(c.Selection))
	assert.Equal(t, "post-body", c.Selection.AttrOr("id", ""))
}

func TestLocate_LargestTextFallback(t *testing.T) {
	t.Parallel()

	doc := parse(t, `<body>
		<section><p>short</p></section>
		<div><p>this block has considerably more words in it</p><script>var padding = "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx";</script></div>
		<section><p>mid length text</p><style>.a{color:red;padding:0;margin:0;border:0}</style></section>
	</body>`)

	c, ok := locator.New().Locate(doc)
	require.True(t, ok)
	assert.Equal(t, "largest-text", c.Strategy)
	assert.Contains(t, c.Selection.Text(), "considerably more words")
}

func TestLocate_NotFound(t *testing.T) {
	t.Parallel()

	_, ok := locator.New().Locate(parse(t, `<html><body><p>loose paragraph</p></body></html>`))
	assert.False(t, ok)

	_, ok = locator.New().Locate(nil)
	assert.False(t, ok)
}

func TestLocate_CustomChain(t *testing.T) {
	t.Parallel()

	l := locator.New(locator.MustSelectors(".story"))
	c, ok := l.Locate(parse(t, `<article>a</article><div class="story">b</div>`))
	require.True(t, ok)
	assert.Equal(t, "b", c.Selection.Text())
}

func TestSelectors_InvalidSelector(t *testing.T) {
	t.Parallel()

	_, err := locator.Selectors("div[")
	require.Error(t, err)
	assert.Panics(t, func() { locator.MustSelectors("div[") })
}

func TestSelectorStrategy_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "article, main", locator.MustSelectors("article", "main").String())
}

func TestReadabilityStrategy_ShortPageYieldsNothing(t *testing.T) {
	t.Parallel()

	sel := locator.Readability(nil).Find(parse(t, `<html><body><p>tiny</p></body></html>`))
	assert.Nil(t, sel)
}

func TestReadabilityStrategy_FindsArticle(t *testing.T) {
	t.Parallel()

	para := strings.Repeat("The quick brown fox jumps over the lazy dog, again and again. ", 20)
	doc := parse(t, `<html><head><title>T</title></head><body>
		<nav><a href="/">Home</a></nav>
		<div class="story"><h1>Heading</h1><p>`+para+`</p><p>`+para+`</p></div>
	</body></html>`)

	sel := locator.Readability(nil).Find(doc)
	require.NotNil(t, sel)
	assert.Contains(t, sel.Text(), "quick brown fox")
}

func TestTrafilaturaStrategy_FindsArticle(t *testing.T) {
	t.Parallel()

	para := strings.Repeat("Rivers carry sediment from the mountains down to the sea over many years. ", 12)
	doc := parse(t, `<html><head><title>T</title></head><body>
		<nav><a href="/">Home</a> <a href="/about">About</a></nav>
		<article><h1>Heading</h1><p>`+para+`</p><p>`+para+`</p><p>`+para+`</p></article>
		<footer>Copyright</footer>
	</body></html>`)

	sel := locator.Trafilatura(nil).Find(doc)
	require.NotNil(t, sel)
	assert.Contains(t, sel.Text(), "Rivers carry sediment")
	assert.NotContains(t, sel.Text(), "Copyright")
}

func TestTrafilaturaStrategy_ShortPageYieldsNothing(t *testing.T) {
	t.Parallel()

	sel := locator.Trafilatura(nil).Find(parse(t, `<html><body><p>tiny</p></body></html>`))
	assert.Nil(t, sel)
}
