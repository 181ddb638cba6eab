// Package catalog holds the read-only product snapshots served by the
// remote API, plus the text-query filter the category page and the
// admin product table share.
package catalog

import "encoding/json"

const (
	CategorySarees      = "Sarees"
	CategorySalwarKurti = "Salwar Kurti"
	CategoryNighty      = "Nighty"
	CategoryPickle      = "Pickle"
	CategoryMasalas     = "Masalas"

	// CategoryAll is the admin table's "no category filter" choice,
	// not a real category.
	CategoryAll = "All"
)

func Categories() []string {
	return []string{
		CategorySarees,
		CategorySalwarKurti,
		CategoryNighty,
		CategoryPickle,
		CategoryMasalas,
	}
}

// Product is owned by the remote API; the client never mutates one.
// Price is whole currency units. Images[0] is the default display
// image and rendering expects at least one entry.
type Product struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Size        SizeList `json:"size,omitempty"`
	Images      []string `json:"images"`
}

// ShowSize reports whether the size line is rendered for p. Sarees
// never show sizes.
func ShowSize(p Product) bool {
	return p.Category != CategorySarees && len(p.Size) > 0
}

// SizeList normalizes the API's size field, which may be absent, a
// single string, or an array of strings.
type SizeList []string

func (s *SizeList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = nil
		return nil
	}

	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one == "" {
			*s = nil
		} else {
			*s = SizeList{one}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*s = SizeList(many)
	return nil
}
