// Package parser scrapes HeinOnline search result pages into raw records.
package parser

import (
	"bytes"
	"fmt"
	"html"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"heinscrape/internal/citation"
	"heinscrape/internal/textutil"
)

const (
	articleSelector = "div.section_type_article_b"
	snippetSelector = ".searchvolume_results"
	lineSelector    = ".search_result_line"
)

var (
	pdfLinkRegex    = regexp.MustCompile(`href="(.+?PrintRequest\?handle=(.*?div=\d*).*?)"`)
	handleRegex     = regexp.MustCompile(`\?handle=(.*?div=\d*)&`)
	matchesRegex    = regexp.MustCompile(`All Matching Text Pages \((\d+)\)`)
	turnToPageRegex = regexp.MustCompile(`^[\w\d\s]*Turn to page`)
)

type Parser struct {
	logger *zap.Logger
}

func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Parse turns one page into raw records in document order. Each record is
// handle, PDF link, match count, snippet, then the non-empty result lines.
func (p *Parser) Parse(body []byte, source string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := NewPage(source)
	pdfLinks := extractPDFLinks(string(body))

	doc.Find(articleSelector).Each(func(i int, s *goquery.Selection) {
		elementHTML, err := goquery.OuterHtml(s)
		if err != nil {
			p.logger.Warn("skipping article element",
				zap.String("source", source), zap.Int("index", i), zap.Error(err))
			return
		}

		handle := ""
		if g, ok := textutil.Group(elementHTML, handleRegex, 1); ok {
			handle = html.UnescapeString(g)
		} else {
			p.logger.Debug("article without handle", zap.String("source", source), zap.Int("index", i))
		}

		matches, _ := textutil.Group(elementHTML, matchesRegex, 1)

		record := citation.RawRecord{
			handle,
			pdfLinks[handle],
			matches,
			extractSnippet(s),
		}
		record = append(record, extractLines(s)...)

		page.Records = append(page.Records, record)
	})

	p.logger.Debug("parsed page",
		zap.String("source", source),
		zap.Int("records", len(page.Records)),
		zap.Int("pdf_links", len(pdfLinks)))

	return page, nil
}

// extractPDFLinks maps each handle to its print request URL. A handle seen
// twice keeps the later link.
func extractPDFLinks(page string) map[string]string {
	links := make(map[string]string)
	for _, m := range pdfLinkRegex.FindAllStringSubmatch(page, -1) {
		links[html.UnescapeString(m[2])] = html.UnescapeString(m[1])
	}
	return links
}

func extractSnippet(s *goquery.Selection) string {
	sel := s.Find(snippetSelector)
	if sel.Length() == 0 {
		return ""
	}
	inner, err := sel.First().Html()
	if err != nil {
		return ""
	}
	return turnToPageRegex.ReplaceAllString(textutil.StripTags(inner), "")
}

func extractLines(s *goquery.Selection) []string {
	var lines []string
	s.Find(lineSelector).Each(func(_ int, line *goquery.Selection) {
		outer, err := goquery.OuterHtml(line)
		if err != nil {
			return
		}
		if text := textutil.NormalizeLine(outer); text != "" {
			lines = append(lines, text)
		}
	})
	return lines
}
