// Package i18n holds user-facing message catalogs for domain error codes.
package i18n

import (
	"bytes"
	"text/template"
)

// Catalog maps error codes to user-facing message templates for one locale.
type Catalog struct {
	locale   string
	messages map[string]string
}

// Locale returns the catalog's locale tag.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for a code, substituting {{.Key}} placeholders
// from metadata. Unknown codes fall back to a generic message; template
// failures fall back to the raw template text.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	msg, ok := c.messages[code]
	if !ok {
		return "An unexpected error occurred"
	}
	if len(metadata) == 0 {
		return msg
	}

	tmpl, err := template.New(code).Parse(msg)
	if err != nil {
		return msg
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, metadata); err != nil {
		return msg
	}
	return buf.String()
}

// GetCatalog returns the catalog for a locale, defaulting to en-US.
func GetCatalog(locale string) *Catalog {
	switch locale {
	case "en-US", "":
		return enUSCatalog
	default:
		return enUSCatalog
	}
}
