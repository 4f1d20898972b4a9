package metadata

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ysmood/gson"
)

// maxGraphDepth bounds how far nested arrays and @graph containers are walked.
const maxGraphDepth = 4

func (e *Extractor) fromStructuredData(doc *goquery.Document, sourceURL string, f *Fields) {
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		node, err := parseBlock(s.Text())
		if err != nil {
			e.logger.Warn("skipping malformed JSON-LD block",
				slog.String("url", sourceURL),
				slog.Int("block", i),
				slog.String("error", err.Error()),
			)
			return
		}
		for _, obj := range objects(node, 0) {
			e.fromObject(obj, f)
		}
	})
}

// parseBlock drops anything before the first '{' or '[' (BOMs, stray
// comment markers, CDATA openers) and decodes the remainder.
func parseBlock(raw string) (gson.JSON, error) {
	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return gson.JSON{}, errNoJSON
	}
	body := strings.TrimSpace(raw[start:])
	body = strings.TrimSuffix(body, "]]>")

	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return gson.JSON{}, err
	}
	return gson.New(v), nil
}

var errNoJSON = errors.New("no JSON value in block")

// objects flattens a parsed block into the JSON objects it describes:
// top-level arrays are expanded and @graph members are hoisted.
func objects(j gson.JSON, depth int) []gson.JSON {
	if depth > maxGraphDepth {
		return nil
	}
	switch j.Val().(type) {
	case []any:
		var out []gson.JSON
		for _, el := range j.Arr() {
			out = append(out, objects(el, depth+1)...)
		}
		return out
	case map[string]any:
		out := []gson.JSON{j}
		if g, ok := j.Gets("@graph"); ok {
			out = append(out, objects(g, depth+1)...)
		}
		return out
	}
	return nil
}

func (e *Extractor) fromObject(obj gson.JSON, f *Fields) {
	for _, h := range e.table.ld {
		v, ok := obj.Gets(gson.Path(h.Key)...)
		if !ok {
			continue
		}
		f.fill(h.Field, scalar(v, objectKeys(h.Field), 0))
	}
}

// objectKeys lists the members that name an object value for field.
func objectKeys(field Field) []string {
	if field == HeaderImage {
		return []string{"url", "contentUrl"}
	}
	return []string{"name"}
}

// scalar reduces a JSON-LD value to a string: strings as-is, objects by the
// first of keys they carry, arrays by their first usable element.
func scalar(v gson.JSON, keys []string, depth int) string {
	if depth > maxGraphDepth {
		return ""
	}
	switch val := v.Val().(type) {
	case string:
		return val
	case map[string]any:
		for _, key := range keys {
			if s, ok := val[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	case []any:
		for _, el := range v.Arr() {
			if s := scalar(el, keys, depth+1); strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}
