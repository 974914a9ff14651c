package shortcode

// reserved holds path segments served by other routes. They never resolve
// to a link and cannot be claimed as custom slugs.
var reserved = map[string]struct{}{
	"admin":         {},
	"analytics":     {},
	"api":           {},
	"bulk":          {},
	"bulk-generate": {},
	"docs":          {},
	"favicon.ico":   {},
	"health":        {},
	"metrics":       {},
	"robots.txt":    {},
}

// IsReserved reports whether code is a reserved path segment.
func IsReserved(code string) bool {
	_, ok := reserved[code]
	return ok
}
