package span

import "encoding/json"

// MarshalJSON encodes a text leaf as {"text": ...}.
func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text string `json:"text"`
	}{t.Value})
}

// MarshalJSON encodes a link as {"link": url, "children": [...]}.
func (l Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Link     string `json:"link"`
		Children []Span `json:"children"`
	}{l.URL, l.Children})
}

// MarshalJSON encodes a reference marker as {"ref": id, "number": n}.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Ref    string `json:"ref"`
		Number int    `json:"number,omitempty"`
	}{r.RawID, r.Number})
}

// MarshalJSON encodes a wrapper as {"style": s, "children": [...]}.
func (f Formatted) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Style    Style  `json:"style"`
		Children []Span `json:"children"`
	}{f.Style, f.Children})
}
