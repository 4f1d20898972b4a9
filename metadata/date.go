package metadata

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"github.com/use-agent/clipper/textnorm"
)

// dateClassHints are class substrings that mark an element as a likely
// publication date.
var dateClassHints = []string{"date", "time", "published", "posted"}

// maxDateText skips elements whose text is clearly more than a date.
const maxDateText = 64

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// scanDate walks <time datetime> elements and date-classed elements in
// document order and returns the first value that parses.
func scanDate(doc *goquery.Document) string {
	var found string
	doc.Find("time[datetime], [class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if goquery.NodeName(s) != "time" && !hasDateClass(s) {
			return true
		}
		if dt, ok := s.Attr("datetime"); ok {
			if d, ok := ParseDate(dt); ok {
				found = d
				return false
			}
		}
		text := textnorm.Line(s.Text())
		if len(text) > maxDateText {
			return true
		}
		if d, ok := ParseDate(text); ok {
			found = d
			return false
		}
		return true
	})
	return found
}

func hasDateClass(s *goquery.Selection) bool {
	class := strings.ToLower(s.AttrOr("class", ""))
	for _, h := range dateClassHints {
		if strings.Contains(class, h) {
			return true
		}
	}
	return false
}

// ParseDate reports whether s is a recognizable date. ISO-8601 input is
// returned unchanged; looser formats are read as UTC and reformatted as
// RFC 3339.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range isoLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return s, true
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil || t.IsZero() {
		return "", false
	}
	return t.Format(time.RFC3339), true
}
