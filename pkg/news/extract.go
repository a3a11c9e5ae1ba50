package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var ErrNoContent = errors.New("no content could be extracted")

const (
	minParagraphChars = 100
	noiseSelector     = "script, style, nav, header, footer, iframe, .advertisement, [class*='ad-'], [id*='ad-']"
)

var contentSelectors = []string{
	"article",
	"[role='main']",
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"main",
	"#content",
	".story-body",
}

// Extractor loads an article page and returns its readable text.
type Extractor struct {
	httpClient *http.Client
}

func NewExtractor() *Extractor {
	return &Extractor{httpClient: &http.Client{Timeout: 20 * time.Second}}
}

func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; newsmentor/1.0)")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extract: unexpected status %d", resp.StatusCode)
	}

	return ExtractContent(resp.Body)
}

func ExtractContent(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	var content string
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			content = text
			break
		}
	}

	if content == "" {
		var paragraphs []string
		doc.Find("p").Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > minParagraphChars {
				paragraphs = append(paragraphs, text)
			}
		})
		content = strings.Join(paragraphs, "\n\n")
	}

	content = collapseSpace(content)
	if content == "" {
		return "", ErrNoContent
	}
	return content, nil
}

// plainText strips markup from feed snippets.
func plainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpace(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(fragment)
	}
	return collapseSpace(doc.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
