package news

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxDescriptionRunes = 300

var validate = validator.New(validator.WithRequiredStructEnabled())

// Merge concatenates provider batches in the given order and returns the
// de-duplicated articles sorted newest first. Articles missing a title,
// description, URL or publish time are dropped; blank text counts as missing. An article is a duplicate
// when it shares a URL with an accepted article or when either title is a
// case-insensitive substring of the other; the first one seen wins.
// Comparison is against every accepted article, so the cost is quadratic.
func Merge(category string, batches ...[]Article) []Article {
	var all []Article
	for _, batch := range batches {
		all = append(all, batch...)
	}

	accepted := make([]Article, 0, len(all))
	lowerTitles := make([]string, 0, len(all))

	for _, a := range all {
		a.Title = strings.TrimSpace(a.Title)
		a.Description = strings.TrimSpace(a.Description)
		a.URL = strings.TrimSpace(a.URL)
		if err := validate.Struct(a); err != nil {
			continue
		}

		title := strings.ToLower(a.Title)
		if isDuplicate(accepted, lowerTitles, a.URL, title) {
			continue
		}

		accepted = append(accepted, normalize(a, category))
		lowerTitles = append(lowerTitles, title)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].PublishedAt.After(accepted[j].PublishedAt)
	})

	return accepted
}

func isDuplicate(accepted []Article, lowerTitles []string, url, title string) bool {
	for i, existing := range accepted {
		if existing.URL == url {
			return true
		}
		other := lowerTitles[i]
		if strings.Contains(other, title) || strings.Contains(title, other) {
			return true
		}
	}
	return false
}

func normalize(a Article, category string) Article {
	a.PublishedAt = a.PublishedAt.UTC()

	if truncated := truncateRunes(a.Description, maxDescriptionRunes); truncated != a.Description {
		a.Description = truncated + "..."
	}

	if a.Source.ID == "" {
		a.Source.ID = "unknown"
	}
	if a.Source.Name == "" {
		a.Source.Name = "News Source"
	}

	if a.Category == "" {
		a.Category = category
	}

	return a
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
