package search

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"abby-server/internal/infrastructure/websearch"
)

const (
	noTitle       = "No title"
	noLink        = "No link"
	noDescription = "No description"
)

// FormatResults renders a raw search API response as a markdown digest. At
// most limit entries are rendered. Malformed JSON degrades to an inline error
// string rather than failing the request.
func FormatResults(raw []byte, limit int) string {
	var resp websearch.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "Error parsing search results: " + err.Error()
	}

	var b strings.Builder
	b.WriteString("# 🔍 Search Results\n\n")

	if resp.SearchInformation != nil {
		total, _ := strconv.ParseInt(resp.SearchInformation.TotalResults, 10, 64)
		fmt.Fprintf(&b, "**Found %s results in %.2f seconds**\n\n",
			groupThousands(total), resp.SearchInformation.SearchTime)
	}

	if len(resp.Items) > 0 {
		count := len(resp.Items)
		if count > limit {
			count = limit
		}
		for i := 0; i < count; i++ {
			writeEntry(&b, i+1, resp.Items[i])
		}
	} else {
		b.WriteString("❌ **No results found for this query.**\n\n")
		b.WriteString("Try rephrasing your search or using different keywords.")
	}

	return b.String()
}

func writeEntry(b *strings.Builder, position int, item websearch.Item) {
	title := item.Title
	if title == "" {
		title = noTitle
	}
	link := item.Link
	if link == "" {
		link = noLink
	}
	snippet := item.Snippet
	if snippet == "" {
		snippet = noDescription
	}

	fmt.Fprintf(b, "## %d. %s\n\n", position, title)
	fmt.Fprintf(b, "**Source:** %s  \n", item.DisplayLink)
	fmt.Fprintf(b, "**URL:** [%s](%s)  \n", item.DisplayLink, link)
	if published := item.PublishedTime(); published != "" {
		fmt.Fprintf(b, "**Published:** %s  \n", published)
	}
	fmt.Fprintf(b, "**Description:** %s\n\n", snippet)
	if img := item.PreviewImage(); img != "" {
		fmt.Fprintf(b, "![Preview](%s)\n\n", img)
	}
	b.WriteString("---\n\n")
}

// groupThousands renders n with comma separators, e.g. 1520000 -> "1,520,000".
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
