package grid

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Review is a single diary entry for a watched movie
type Review struct {
	Date      string `json:"date"`
	Title     string `json:"title"`
	Rating    string `json:"rating"`
	Rewatch   bool   `json:"rewatch"`
	Thumbnail string `json:"thumbnail"`
	Link      string `json:"link"`
}

// UnmarshalJSON accepts the loosely typed rows a spreadsheet backend emits:
// ratings may be numbers and rewatch may be "Yes"/"No". A rating of any other
// JSON type decodes as "" so the row falls out of every bucket instead of
// failing the whole batch; an unrecognised rewatch value reads as false.
func (r *Review) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date      string          `json:"date"`
		Title     string          `json:"title"`
		Rating    json.RawMessage `json:"rating"`
		Rewatch   json.RawMessage `json:"rewatch"`
		Thumbnail string          `json:"thumbnail"`
		Link      string          `json:"link"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Review{
		Date:      raw.Date,
		Title:     raw.Title,
		Rating:    decodeRating(raw.Rating),
		Rewatch:   decodeRewatch(raw.Rewatch),
		Thumbnail: raw.Thumbnail,
		Link:      raw.Link,
	}
	return nil
}

// decodeRating keeps strings verbatim so bucket matching stays exact.
func decodeRating(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func decodeRewatch(raw json.RawMessage) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "y":
		return true
	}
	return false
}
