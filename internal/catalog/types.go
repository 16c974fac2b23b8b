package catalog

import "pokedex/pkg/models"

// typeTable is the fixed set of elemental types the filter offers, with
// the badge color used by the web client.
var typeTable = [...]models.TypeInfo{
	{Name: "bug", Color: "#65a30d"},
	{Name: "dark", Color: "#1f2937"},
	{Name: "dragon", Color: "#4f46e5"},
	{Name: "electric", Color: "#eab308"},
	{Name: "fairy", Color: "#ec4899"},
	{Name: "fighting", Color: "#b91c1c"},
	{Name: "fire", Color: "#dc2626"},
	{Name: "flying", Color: "#60a5fa"},
	{Name: "ghost", Color: "#7e22ce"},
	{Name: "grass", Color: "#16a34a"},
	{Name: "ground", Color: "#a16207"},
	{Name: "ice", Color: "#22d3ee"},
	{Name: "normal", Color: "#6b7280"},
	{Name: "poison", Color: "#9333ea"},
	{Name: "psychic", Color: "#db2777"},
	{Name: "rock", Color: "#854d0e"},
	{Name: "steel", Color: "#4b5563"},
	{Name: "water", Color: "#2563eb"},
}

// Types returns a fresh copy of the type table.
func Types() []models.TypeInfo {
	out := make([]models.TypeInfo, len(typeTable))
	copy(out, typeTable[:])
	return out
}

func TypeNames() []string {
	out := make([]string, len(typeTable))
	for i, t := range typeTable {
		out[i] = t.Name
	}
	return out
}
