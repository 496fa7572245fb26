package service

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pwrtux/moodle-magnet/internal/domain/course"
)

// HarvestFileLinks extracts served-file URLs from an HTML fragment. Moodle
// embeds uploaded files in section summaries and module descriptions as
// pluginfile.php anchors and images; those files never appear in the module
// contents listing, so harvesting them is the only way to reach them.
// A fragment that does not parse yields no links.
func HarvestFileLinks(fragment string) []*course.Node {
	if strings.TrimSpace(fragment) == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil
	}

	var leaves []*course.Node
	seen := make(map[string]bool)

	doc.Find("a[href], img[src]").Each(func(i int, sel *goquery.Selection) {
		raw, ok := sel.Attr("href")
		if !ok {
			raw, ok = sel.Attr("src")
		}
		if !ok {
			return
		}

		fileURL, ok := normalizePluginfileURL(raw)
		if !ok || seen[fileURL] {
			return
		}

		name := fileNameFromURL(fileURL)
		if name == "" {
			return
		}

		seen[fileURL] = true
		leaves = append(leaves, course.NewFile(name, fileURL, 0, 0))
	})

	return leaves
}

// normalizePluginfileURL reports whether a link points at a Moodle-served
// file and rewrites it onto the token-authenticated webservice endpoint.
// Relative links are dropped: without an absolute URL there is nothing to
// download.
func normalizePluginfileURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	if !strings.Contains(u.Path, "/pluginfile.php/") {
		return "", false
	}
	if !strings.Contains(u.Path, "/webservice/pluginfile.php/") {
		u.Path = strings.Replace(u.Path, "/pluginfile.php/", "/webservice/pluginfile.php/", 1)
	}

	return u.String(), true
}

// fileNameFromURL derives a filename from the last path segment of a
// pluginfile URL. url.Parse has already decoded percent escapes.
func fileNameFromURL(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}

	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" || base == "pluginfile.php" {
		return ""
	}
	return base
}
