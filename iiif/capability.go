package iiif

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrMalformedCapability is returned for an unreadable info.json document.
var ErrMalformedCapability = errors.New("malformed IIIF image information")

// Capability holds the size limits an image service declares in its
// info.json. MaxWidth and MaxHeight default to the original size when the
// service does not declare them; MaxArea zero means unconstrained. The zero
// value means nothing is known about the service.
type Capability struct {
	ServiceID string `json:"id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	MaxWidth  int    `json:"maxWidth,omitempty"`
	MaxHeight int    `json:"maxHeight,omitempty"`
	MaxArea   int    `json:"maxArea,omitempty"`
}

// limits mirrors the size related fields of an image information document,
// and of an Image API 2 profile description.
type limits struct {
	Width     int  `mapstructure:"width"`
	Height    int  `mapstructure:"height"`
	MaxWidth  *int `mapstructure:"maxWidth"`
	MaxHeight *int `mapstructure:"maxHeight"`
	MaxArea   *int `mapstructure:"maxArea"`
}

// InfoURL is where the image information of a service lives.
func InfoURL(serviceID string) string {
	return strings.TrimRight(serviceID, "/") + "/info.json"
}

// ParseCapability reads an Image API information document. Limits absent at
// the top level are looked up in the `profile` entries, where Image API 2
// services declare them.
func ParseCapability(data []byte) (Capability, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return Capability{}, fmt.Errorf("%w: %v", ErrMalformedCapability, err)
	}

	var top limits
	if err := decodeLimits(doc, &top); err != nil {
		return Capability{}, err
	}

	if profiles, ok := doc["profile"].([]interface{}); ok {
		for _, p := range profiles {
			entry, ok := p.(map[string]interface{})
			if !ok {
				continue
			}
			var profile limits
			if err := decodeLimits(entry, &profile); err != nil {
				continue
			}
			top.MaxWidth = firstSet(top.MaxWidth, profile.MaxWidth)
			top.MaxHeight = firstSet(top.MaxHeight, profile.MaxHeight)
			top.MaxArea = firstSet(top.MaxArea, profile.MaxArea)
		}
	}

	c := Capability{
		Width:     top.Width,
		Height:    top.Height,
		MaxWidth:  top.Width,
		MaxHeight: top.Height,
	}
	if top.MaxWidth != nil {
		c.MaxWidth = *top.MaxWidth
	}
	if top.MaxHeight != nil {
		c.MaxHeight = *top.MaxHeight
	}
	if top.MaxArea != nil {
		c.MaxArea = *top.MaxArea
	}

	for _, id := range []string{"id", "@id"} {
		if s, ok := doc[id].(string); ok && s != "" {
			c.ServiceID = strings.TrimRight(s, "/")
			break
		}
	}
	return c, nil
}

func decodeLimits(input map[string]interface{}, out *limits) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCapability, err)
	}
	return nil
}

func firstSet(a, b *int) *int {
	if a != nil {
		return a
	}
	return b
}
