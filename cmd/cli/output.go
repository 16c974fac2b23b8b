package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"

	"pokedex/pkg/models"
)

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printSummaries(w io.Writer, items []models.PokemonSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPES\tHP\tATK\tDEF")
	for _, p := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\n",
			p.ID, p.Name, strings.Join(p.Types, "/"), p.Stats.HP, p.Stats.Attack, p.Stats.Defense)
	}
	return tw.Flush()
}

func printPagination(w io.Writer, p models.Pagination) {
	fmt.Fprintf(w, "page %d of %d (%d total)", p.CurrentPage, p.TotalPages, p.Total)
	if p.HasMore {
		fmt.Fprint(w, ", more available")
	}
	fmt.Fprintln(w)
}

func printDetail(w io.Writer, d models.PokemonDetail) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#%d %s\t%s\n", d.ID, d.Name, strings.Join(d.Types, "/"))
	fmt.Fprintf(tw, "height\t%.1f m\n", float64(d.Height)/10)
	fmt.Fprintf(tw, "weight\t%.1f kg\n", float64(d.Weight)/10)
	fmt.Fprintf(tw, "abilities\t%s\n", strings.Join(d.Abilities, ", "))
	s := d.Stats
	fmt.Fprintf(tw, "stats\thp %d  atk %d  def %d  spa %d  spd %d  spe %d\n",
		s.HP, s.Attack, s.Defense, s.SpecialAttack, s.SpecialDefense, s.Speed)
	if d.Description != "" {
		fmt.Fprintf(tw, "description\t%s\n", d.Description)
	}

	lineage := make([]string, 0, len(d.EvolutionChain))
	for _, e := range d.EvolutionChain {
		lineage = append(lineage, e.Name)
	}
	if len(lineage) > 0 {
		fmt.Fprintf(tw, "evolutions\t%s\n", strings.Join(lineage, " > "))
	}
	for _, m := range d.Moves {
		fmt.Fprintf(tw, "move\t%s (%s) power %s accuracy %s\n", m.Name, m.Type, optInt(m.Power), optInt(m.Accuracy))
	}
	return tw.Flush()
}

func optInt(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func writeJSONFile(path string, items []models.PokemonSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeCSV(w io.Writer, items []models.PokemonSummary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"id", "name", "types", "sprite", "hp", "attack", "defense"}); err != nil {
		return err
	}
	for _, p := range items {
		if err := writer.Write([]string{
			strconv.Itoa(p.ID),
			p.Name,
			strings.Join(p.Types, ","),
			p.Sprite,
			strconv.Itoa(p.Stats.HP),
			strconv.Itoa(p.Stats.Attack),
			strconv.Itoa(p.Stats.Defense),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeCSVFile(path string, items []models.PokemonSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeCSV(file, items)
}
