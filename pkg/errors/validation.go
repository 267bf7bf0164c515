package errors

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTextLength bounds the input accepted by the network surfaces (HTTP,
// gRPC, MCP). The engine itself has no limit.
const MaxTextLength = 1 << 20

// filterNameRegex matches filter identifiers: the file stem of a definition,
// e.g. "pirate", "beatnik_1950s", "new-york".
var filterNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateFilterName validates a filter identifier received from a user or a
// remote caller. Identifiers become file names and URL path segments, so
// anything that could escape the filter directory is rejected:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateFilterName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "filter name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "filter name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "filter name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "filter name contains invalid characters: %q", pattern)
		}
	}

	if !filterNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid filter name: %q", name)
	}

	return nil
}

// ValidateText validates text submitted for transformation over the network.
// Empty text is rejected because the API contract requires some input.
func ValidateText(text string) error {
	if text == "" {
		return New(ErrCodeInvalidInput, "no text provided")
	}
	if len(text) > MaxTextLength {
		return New(ErrCodeInvalidInput, "text too long (max %d bytes)", MaxTextLength)
	}
	if !utf8.ValidString(text) {
		return New(ErrCodeInvalidInput, "text is not valid UTF-8")
	}
	return nil
}

// ValidatePath validates a relative file path referenced from inside a
// filter definition (for example a Lua script next to it).
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
