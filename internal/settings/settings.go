// Package settings holds organisation-wide configuration: display
// preferences stored as key/value pairs plus uploaded branding assets.
package settings

import "errors"

var (
	ErrUnknownKey      = errors.New("unknown setting key")
	ErrFileTooLarge    = errors.New("uploaded file exceeds size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Known setting keys. Unknown keys are rejected on write so typos do not
// silently create orphan rows.
const (
	KeyCompanyName = "company_name"
	KeyLogoPath    = "logo_path"
	KeyFaviconPath = "favicon_path"
	KeyDateFormat  = "date_format"
	KeyTimezone    = "timezone"
)

var knownKeys = map[string]struct{}{
	KeyCompanyName: {},
	KeyLogoPath:    {},
	KeyFaviconPath: {},
	KeyDateFormat:  {},
	KeyTimezone:    {},
}

func IsKnownKey(key string) bool {
	_, ok := knownKeys[key]
	return ok
}
