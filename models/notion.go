package models

// PropertyOption is one choice of a select or multi_select property.
type PropertyOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Property describes one column of the export database, with the remote
// type folded into the small set the UI knows how to render.
type Property struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Type    string           `json:"type"`
	Options []PropertyOption `json:"options,omitempty"`
}

// PropertiesResponse is the response for GET /api/notion/properties.
// Data is keyed by property name.
type PropertiesResponse struct {
	Status string              `json:"status"`
	Data   map[string]Property `json:"data"`
}
