package metadata_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/clipper/metadata"
)

func parse(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func extract(t *testing.T, markup, sourceURL string) metadata.Fields {
	t.Helper()
	return metadata.NewExtractor(metadata.DefaultTable()).Extract(parse(t, markup), sourceURL)
}

func TestExtract_TitleAndRelativeImage(t *testing.T) {
	t.Parallel()

	f := extract(t, `<html><head>
		<title>Hello</title>
		<meta property="og:image" content="/img/a.png">
	</head><body><article><p>World</p></article></body></html>`, "https://example.test/post")

	assert.Equal(t, "Hello", f.Title)
	assert.Equal(t, "https://example.test/img/a.png", f.HeaderImage)
}

func TestExtract_PriorityTieBreak(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
	}{
		{
			name:   "higher priority first in document",
			markup: `<meta property="og:title" content="A"><meta name="title" content="B">`,
		},
		{
			name:   "higher priority last in document",
			markup: `<meta name="title" content="B"><meta property="og:title" content="A">`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := extract(t, "<html><head>"+tt.markup+"</head><body></body></html>", "https://example.test/")
			assert.Equal(t, "A", f.Title)
		})
	}
}

func TestExtract_FirstNonEmptyTagWins(t *testing.T) {
	t.Parallel()

	f := extract(t, `<head>
		<meta name="description" content="   ">
		<meta name="description" content="first">
		<meta name="description" content="second">
	</head>`, "https://example.test/")

	assert.Equal(t, "first", f.Description)
}

func TestExtract_PropertyPreferredOverName(t *testing.T) {
	t.Parallel()

	f := extract(t, `<head><meta property="og:site_name" name="application-name" content="Site"></head>`,
		"https://example.test/")

	assert.Equal(t, "Site", f.SiteName)
}

func TestExtract_ItempropFallback(t *testing.T) {
	t.Parallel()

	f := extract(t, `<head><meta itemprop="datePublished" content="2024-03-01"></head>`, "https://example.test/")
	assert.Equal(t, "2024-03-01", f.Date)
}

func TestExtract_NormalizesValues(t *testing.T) {
	t.Parallel()

	f := extract(t, `<head>
		<title>  Tom &amp;amp; Jerry
		</title>
		<meta name="author" content="Jane&#1; Doe">
	</head>`, "https://example.test/")

	assert.Equal(t, "Tom & Jerry", f.Title)
	assert.Equal(t, "Jane Doe", f.Author)
}

func TestExtract_JSONLD(t *testing.T) {
	t.Parallel()

	t.Run("author object and publisher", func(t *testing.T) {
		t.Parallel()
		f := extract(t, `<head><script type="application/ld+json">
			{"@type":"NewsArticle","author":{"@type":"Person","name":"Ada"},
			 "publisher":{"name":"Daily"},"datePublished":"2024-01-02T03:04:05Z",
			 "image":{"@type":"ImageObject","url":"/hero.jpg"}}
		</script></head>`, "https://example.test/a/b")

		assert.Equal(t, "Ada", f.Author)
		assert.Equal(t, "Daily", f.SiteName)
		assert.Equal(t, "2024-01-02T03:04:05Z", f.Date)
		assert.Equal(t, "https://example.test/hero.jpg", f.HeaderImage)
	})

	t.Run("bare string author", func(t *testing.T) {
		t.Parallel()
		f := extract(t, `<script type="application/ld+json">{"author":"Grace","publisher":"Press"}</script>`,
			"https://example.test/")
		assert.Equal(t, "Grace", f.Author)
		assert.Equal(t, "Press", f.SiteName)
	})

	t.Run("author list", func(t *testing.T) {
		t.Parallel()
		f := extract(t, `<script type="application/ld+json">{"author":[{"name":""},{"name":"Linus"}]}</script>`,
			"https://example.test/")
		assert.Equal(t, "Linus", f.Author)
	})

	t.Run("graph container", func(t *testing.T) {
		t.Parallel()
		f := extract(t, `<script type="application/ld+json">
			{"@context":"https://schema.org","@graph":[
				{"@type":"WebSite"},
				{"@type":"Article","headline":"From Graph","author":{"name":"Barbara"}}
			]}</script>`, "https://example.test/")
		assert.Equal(t, "From Graph", f.Title)
		assert.Equal(t, "Barbara", f.Author)
	})

	t.Run("does not override meta", func(t *testing.T) {
		t.Parallel()
		f := extract(t, `<head><meta name="author" content="Meta Author">
			<script type="application/ld+json">{"author":{"name":"LD Author"}}</script></head>`,
			"https://example.test/")
		assert.Equal(t, "Meta Author", f.Author)
	})
}

func TestExtract_MalformedJSONLDIsSkipped(t *testing.T) {
	t.Parallel()

	f := extract(t, `<html><head>
		<title>Still Here</title>
		<script type="application/ld+json">x{"author": </script>
		<script type="application/ld+json">{"author":{"name":"Second Block"}}</script>
	</head></html>`, "https://example.test/")

	assert.Equal(t, "Still Here", f.Title)
	assert.Equal(t, "Second Block", f.Author)
}

func TestExtract_LeadingGarbageBeforeJSON(t *testing.T) {
	t.Parallel()

	f := extract(t, "<script type=\"application/ld+json\">\uFEFF<!--{\"author\":\"Bom\"}</script>",
		"https://example.test/")
	assert.Equal(t, "Bom", f.Author)
}

func TestExtract_DateFallback(t *testing.T) {
	t.Parallel()

	t.Run("time datetime attribute", func(t *testing.T) {
		t.Parallel()
		f := extract(t, `<body><p>intro</p><time datetime="2023-05-06">May 6</time></body>`, "https://example.test/")
		assert.Equal(t, "2023-05-06", f.Date)
	})

	t.Run("classed element text", func(t *testing.T) {
		t.Parallel()
		f := extract(t, `<body><span class="post-date">2022-11-30</span></body>`, "https://example.test/")
		assert.Equal(t, "2022-11-30", f.Date)
	})

	t.Run("unparseable candidates are skipped", func(t *testing.T) {
		t.Parallel()
		f := extract(t, `<body>
			<div class="timeline">not a date at all</div>
			<span class="published">2021-07-08T09:10:11Z</span>
		</body>`, "https://example.test/")
		assert.Equal(t, "2021-07-08T09:10:11Z", f.Date)
	})

	t.Run("meta date wins over scan", func(t *testing.T) {
		t.Parallel()
		f := extract(t, `<head><meta property="article:published_time" content="2020-01-01"></head>
			<body><time datetime="1999-01-01"></time></body>`, "https://example.test/")
		assert.Equal(t, "2020-01-01", f.Date)
	})
}

func TestExtract_DateHintsMustParse(t *testing.T) {
	t.Parallel()

	t.Run("unparseable meta falls through to next hint", func(t *testing.T) {
		t.Parallel()
		f := extract(t, `<head>
			<meta property="article:published_time" content="yesterday">
			<meta property="article:modified_time" content="2024-02-03">
		</head>`, "https://example.test/")
		assert.Equal(t, "2024-02-03", f.Date)
	})

	t.Run("loose meta date is reformatted", func(t *testing.T) {
		t.Parallel()
		f := extract(t, `<meta name="date" content="March 5, 2021">`, "https://example.test/")
		assert.Equal(t, "2021-03-05T00:00:00Z", f.Date)
	})

	t.Run("unparseable JSON-LD date falls back to scan", func(t *testing.T) {
		t.Parallel()
		f := extract(t, `<head><script type="application/ld+json">{"datePublished":"some day soon"}</script></head>
			<body><time datetime="2019-09-09">Sep 9</time></body>`, "https://example.test/")
		assert.Equal(t, "2019-09-09", f.Date)
	})

	t.Run("no parseable date leaves field empty", func(t *testing.T) {
		t.Parallel()
		f := extract(t, `<meta property="article:published_time" content="yesterday">`, "https://example.test/")
		assert.Empty(t, f.Date)
	})
}

func TestExtract_HeaderImageDroppedWhenNotResolvable(t *testing.T) {
	t.Parallel()

	f := extract(t, `<meta property="og:image" content="/a.png">`, "::not a url")
	assert.Empty(t, f.HeaderImage)
}

func TestExtract_EmptyDocument(t *testing.T) {
	t.Parallel()

	f := extract(t, "", "https://example.test/")
	assert.Equal(t, metadata.Fields{}, f)

	assert.Equal(t, metadata.Fields{}, metadata.NewExtractor(nil).Extract(nil, ""))
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-02", "2024-01-02", true},
		{"2024-01-02T03:04:05+09:00", "2024-01-02T03:04:05+09:00", true},
		{"March 5, 2021", "2021-03-05T00:00:00Z", true},
		{"", "", false},
		{"yesterday-ish", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := metadata.ParseDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultTable_Ordering(t *testing.T) {
	t.Parallel()

	hints := metadata.DefaultTable().MetaHints()
	idx := func(key string) int {
		for i, h := range hints {
			if h.Key == key {
				return i
			}
		}
		return -1
	}
	assert.Less(t, idx("og:title"), idx("title"))
	assert.Less(t, idx("article:published_time"), idx("article:modified_time"))
	assert.Equal(t, "datepublished", hints[idx("datepublished")].Key, "keys are lowercased")
}
