package reanim

import (
	"encoding/xml"
	"fmt"
	"os"
)

// DefaultFPS is used when a file omits <fps> or gives a non-positive value.
const DefaultFPS = 12

// Parse parses reanim data. The content has no root element, so it is
// wrapped with <reanim> before unmarshaling.
//
// Parameters:
//   - data: raw file content
//
// Returns:
//   - *ReanimXML: the parsed tracks, FPS defaulted to DefaultFPS if missing
//   - error: XML syntax error
func Parse(data []byte) (*ReanimXML, error) {
	wrapped := make([]byte, 0, len(data)+len("<reanim></reanim>"))
	wrapped = append(wrapped, "<reanim>"...)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, "</reanim>"...)

	var r ReanimXML
	if err := xml.Unmarshal(wrapped, &r); err != nil {
		return nil, fmt.Errorf("failed to parse reanim XML: %w", err)
	}
	if r.FPS <= 0 {
		r.FPS = DefaultFPS
	}
	return &r, nil
}

// ParseFile reads and parses a reanim file from disk.
//
// Example:
//
//	r, err := reanim.ParseFile("data/reanim/Stickman.reanim")
//	if err != nil {
//	    log.Fatalf("Failed to parse reanim: %v", err)
//	}
//	fmt.Printf("FPS: %d, parts: %d\n", r.FPS, len(r.PartTracks()))
func ParseFile(path string) (*ReanimXML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reanim file '%s': %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}
