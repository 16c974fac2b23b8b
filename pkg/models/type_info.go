package models

// TypeInfo is an elemental type with the badge color the UI paints it in.
type TypeInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}
