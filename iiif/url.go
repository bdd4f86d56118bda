package iiif

import (
	"fmt"
	"strings"
)

// BuildURL renders an Image API 2 request for the whole region of a service,
// unrotated, as a default quality JPEG.
func BuildURL(serviceID string, size Size) string {
	return fmt.Sprintf("%s/full/%s/0/default.jpg", strings.TrimRight(serviceID, "/"), size.token())
}

// FullURL is the request for the full size image.
func FullURL(serviceID string) string {
	return BuildURL(serviceID, Size{})
}

// token is the `size` path segment: w,h | w, | ,h | full
func (s Size) token() string {
	switch {
	case s.Width > 0 && s.Height > 0:
		return fmt.Sprintf("%d,%d", s.Width, s.Height)
	case s.Width > 0:
		return fmt.Sprintf("%d,", s.Width)
	case s.Height > 0:
		return fmt.Sprintf(",%d", s.Height)
	}
	return "full"
}
