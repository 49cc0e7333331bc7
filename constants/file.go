package constants

import "strings"

// Input formats the page reader understands.
const (
	PDF   = "PDF"
	TXT   = "TXT"
	IMAGE = "IMAGE"
)

// AllowedExtensions holds the file extensions accepted as document input.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the input format for an extension, or "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt":
		return TXT
	case "jpg", "jpeg", "png":
		return IMAGE
	default:
		return ""
	}
}
