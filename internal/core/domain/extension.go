package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var allowedExtensions = map[string]struct{}{
	"doc": {}, "docx": {}, "gif": {}, "jpeg": {}, "jpg": {}, "pdf": {},
	"png": {}, "ppt": {}, "pptx": {}, "txt": {}, "xls": {}, "xlsx": {},
	"eml": {}, "tif": {},
}

// Trailing .token, optionally followed by a query suffix.
var extensionPattern = regexp.MustCompile(`\.([a-zA-Z0-9]+)(?:\?|$)`)

// ClassifyExtension extracts the file extension from a URL or filename
// fragment and validates it against the allow-list. Pure and deterministic.
func ClassifyExtension(text string) (string, error) {
	match := extensionPattern.FindStringSubmatch(text)
	if match == nil {
		return "", WrapError(ErrInvalidExtension, "classify extension", fmt.Errorf("no extension in %q", text))
	}
	ext := strings.ToLower(match[1])
	if _, ok := allowedExtensions[ext]; !ok {
		return "", WrapError(ErrInvalidExtension, "classify extension", fmt.Errorf("extension %q not allow-listed", ext))
	}
	return ext, nil
}
