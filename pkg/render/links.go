package render

import (
	"fmt"
	"html"
	"net/url"
)

// SettingsLink is the plugin action link pointing at the options page for
// slug.
func SettingsLink(slug, label string) string {
	return fmt.Sprintf(`<a href="options-general.php?page=%s">%s</a>`, url.QueryEscape(slug), html.EscapeString(label))
}
