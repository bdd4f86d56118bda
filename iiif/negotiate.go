package iiif

import (
	"math"
)

// Size is a requested or negotiated pixel size. Zero means unspecified; the
// zero Size asks for the full image.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsFull reports whether s is the full size sentinel.
func (s Size) IsFull() bool {
	return s.Width == 0 && s.Height == 0
}

// Negotiate fits a requested size within the limits of an image service.
//
// The max width and height are applied first. When both dimensions are
// requested they shrink together by a single factor; a single dimension is
// clamped on its own and the other one stays open. The max area is applied
// afterwards, using the original aspect ratio to estimate an open dimension.
// Dimensions that were requested never drop below 1.
func Negotiate(width, height int, c Capability) Size {
	width, height = max(width, 0), max(height, 0)
	if width == 0 && height == 0 {
		return Size{}
	}

	width, height = clampDimensions(width, height, c.MaxWidth, c.MaxHeight)
	width, height = clampArea(width, height, c)
	return Size{Width: width, Height: height}
}

func clampDimensions(width, height, maxWidth, maxHeight int) (int, int) {
	if width > 0 && height > 0 {
		// The scale factor is kept as num/den so that flooring is exact.
		num, den := 1, 1
		if maxWidth > 0 && width > maxWidth {
			num, den = maxWidth, width
		}
		if maxHeight > 0 && height > maxHeight && maxHeight*den < num*height {
			num, den = maxHeight, height
		}
		if num < den {
			width = max(1, width*num/den)
			height = max(1, height*num/den)
		}
		return width, height
	}

	if width > 0 && maxWidth > 0 && width > maxWidth {
		width = maxWidth
	}
	if height > 0 && maxHeight > 0 && height > maxHeight {
		height = maxHeight
	}
	return width, height
}

func clampArea(width, height int, c Capability) (int, int) {
	if c.MaxArea <= 0 || c.Width <= 0 || c.Height <= 0 {
		return width, height
	}

	switch {
	case width > 0 && height > 0:
		if area := width * height; area > c.MaxArea {
			scale := math.Sqrt(float64(c.MaxArea) / float64(area))
			width = max(1, int(math.Floor(float64(width)*scale)))
			height = max(1, int(math.Floor(float64(height)*scale)))
			// float rounding may leave a pixel too many
			for width*height > c.MaxArea && (width > 1 || height > 1) {
				if width >= height {
					width--
				} else {
					height--
				}
			}
		}
	case width > 0:
		width = clampSideArea(width, c.Width, c.Height, c.MaxArea)
	case height > 0:
		height = clampSideArea(height, c.Height, c.Width, c.MaxArea)
	}
	return width, height
}

// clampSideArea limits a lone dimension so that, with the other side derived
// from the original aspect ratio, the image stays within maxArea.
func clampSideArea(side, original, other, maxArea int) int {
	if side*Proportional(side, original, other) <= maxArea {
		return side
	}
	side = max(1, int(math.Floor(math.Sqrt(float64(maxArea)*float64(original)/float64(other)))))
	for side > 1 && side*Proportional(side, original, other) > maxArea {
		side--
	}
	return side
}

// Proportional returns round(side * other / original), the length matching
// side under the original aspect ratio, or 0 when original is unknown.
func Proportional(side, original, other int) int {
	if original <= 0 {
		return 0
	}
	return int(math.Round(float64(side) * float64(other) / float64(original)))
}
