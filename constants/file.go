package constants

import "strings"

// FileTypes holds the input kinds a scan can start from.
var FileTypes = []string{"IMAGE", "TXT"}

// AllowedExtensions holds the default allowed file extensions for label ingestion.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"bmp":  {},
	"webp": {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FileTypeForExt returns "TXT" for text inputs and "IMAGE" otherwise.
func FileTypeForExt(ext string) string {
	if NormalizeExt(ext) == "txt" {
		return "TXT"
	}
	return "IMAGE"
}
