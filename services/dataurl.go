package services

import "strings"

// SplitDataURL strips the scheme header from a browser canvas capture
// (`data:image/png;base64,<payload>`) and reports the image extension
// detected from the header. Anything that is not a well-formed data URI is
// treated as carrying no image at all.
func SplitDataURL(dataURL string) (payload, ext string, ok bool) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", "", false
	}
	header, body, found := strings.Cut(dataURL, ",")
	if !found || body == "" {
		return "", "", false
	}
	ext = "jpg"
	if strings.Contains(header, "png") {
		ext = "png"
	}
	return body, ext, true
}
