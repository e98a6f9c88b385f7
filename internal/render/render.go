// Package render converts Result values into human-readable or machine-parseable
// output. Each format is a separate function; the top-level Render dispatcher
// selects based on the format string.
//
// Payloads by Result.Kind:
//
//	creatures → []model.Creature
//	creature  → *model.Creature
//	regions   → []model.Region
//	types     → []string
//	favorites → []int
//	landing   → *model.Landing
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/derickschaefer/dex/internal/catalog"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/util"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatMD    = "md"
)

// Formats lists every accepted --format value.
var Formats = []string{FormatTable, FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatMD}

// ValidFormat reports whether f is an accepted --format value.
func ValidFormat(f string) bool {
	for _, v := range Formats {
		if v == f {
			return true
		}
	}
	return false
}

// Render writes result to w in the specified format.
func Render(w io.Writer, result *model.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatJSONL:
		return renderJSONL(w, result)
	case FormatCSV:
		return renderDelimited(w, result, ',')
	case FormatTSV:
		return renderDelimited(w, result, '\t')
	case FormatMD:
		return renderMarkdown(w, result)
	default:
		return renderTable(w, result)
	}
}

// RenderTo writes to stdout by default; if path is non-empty, writes to file.
func RenderTo(path string, result *model.Result, format string) error {
	if path == "" {
		return Render(os.Stdout, result, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	return Render(f, result, format)
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// ─── JSONL ────────────────────────────────────────────────────────────────────

// renderJSONL writes one record per line for list payloads and the bare
// payload otherwise.
func renderJSONL(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	switch data := result.Data.(type) {
	case []model.Creature:
		for _, c := range data {
			if err := enc.Encode(c); err != nil {
				return err
			}
		}
		return nil
	case []model.Region:
		for _, r := range data {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	case []int:
		for _, id := range data {
			if err := enc.Encode(struct {
				ID int `json:"id"`
			}{id}); err != nil {
				return err
			}
		}
		return nil
	case []string:
		for _, name := range data {
			if err := enc.Encode(struct {
				Name string `json:"name"`
			}{name}); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.Encode(result.Data)
	}
}

// ─── Table ────────────────────────────────────────────────────────────────────

func newTable(w io.Writer, header []string) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(header)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	return tw
}

func renderTable(w io.Writer, result *model.Result) error {
	switch data := result.Data.(type) {
	case []model.Creature:
		return renderCreatureTable(w, data)
	case *model.Creature:
		return renderCreatureDetail(w, data)
	case []model.Region:
		return renderRegionTable(w, data)
	case []string:
		tw := newTable(w, []string{"#", "TYPE"})
		for i, name := range data {
			tw.Append([]string{strconv.Itoa(i + 1), util.Title(name)})
		}
		tw.Render()
		return nil
	case []int:
		tw := newTable(w, []string{"FAVORITE"})
		for _, id := range data {
			tw.Append([]string{util.PadID(id)})
		}
		tw.Render()
		return nil
	case *model.Landing:
		return renderLanding(w, data)
	default:
		// Fallback: JSON
		return renderJSON(w, result)
	}
}

func renderCreatureTable(w io.Writer, cs []model.Creature) error {
	tw := newTable(w, []string{"NO.", "NAME", "TYPES", "HEIGHT", "WEIGHT", "FAV"})
	tw.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_CENTER,
	})
	for _, c := range cs {
		tw.Append([]string{
			c.FormattedNumber(),
			c.DisplayName(),
			strings.Join(typeDisplayNames(&c), ", "),
			util.FormatTenths(c.Height, "M"),
			util.FormatTenths(c.Weight, "KG"),
			favMark(c.IsFavorited),
		})
	}
	tw.Render()
	return nil
}

func renderCreatureDetail(w io.Writer, c *model.Creature) error {
	tw := newTable(w, []string{"FIELD", "VALUE"})
	rows := [][]string{
		{"No.", c.FormattedNumber()},
		{"Name", c.DisplayName()},
		{"Types", strings.Join(typeDisplayNames(c), ", ")},
		{"Height", util.FormatTenths(c.Height, "M")},
		{"Weight", util.FormatTenths(c.Weight, "KG")},
		{"Favorite", favMark(c.IsFavorited)},
	}
	if c.ImageURL != nil {
		rows = append(rows, []string{"Artwork", *c.ImageURL})
	}
	if c.Sprites != nil {
		if c.Sprites.Default != nil {
			rows = append(rows, []string{"Sprite", *c.Sprites.Default})
		}
		if c.Sprites.Shiny != nil {
			rows = append(rows, []string{"Shiny", *c.Sprites.Shiny})
		}
	}
	for _, r := range rows {
		tw.Append(r)
	}
	tw.Render()

	stats := catalog.StatRows(c.Stats)
	if len(stats) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	st := newTable(w, []string{"STAT", "BASE", "", "EV"})
	st.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
	})
	for _, s := range stats {
		st.Append([]string{s.Label, strconv.Itoa(s.Value), statBar(s.Ratio, 20), strconv.Itoa(s.Effort)})
	}
	st.Render()
	return nil
}

func renderRegionTable(w io.Writer, rs []model.Region) error {
	tw := newTable(w, []string{"ID", "REGION", "LOCATIONS"})
	tw.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, r := range rs {
		tw.Append([]string{strconv.Itoa(r.ID), r.DisplayName(), strconv.Itoa(r.LocationCount)})
	}
	tw.Render()
	return nil
}

func renderLanding(w io.Writer, l *model.Landing) error {
	fmt.Fprintln(w, "Featured")
	if err := renderCreatureTable(w, l.Featured); err != nil {
		return err
	}
	names := make([]string, len(l.Types))
	for i, t := range l.Types {
		names[i] = util.Title(t)
	}
	fmt.Fprintf(w, "\nTypes (%d)\n%s\n", len(l.Types), strings.Join(names, "  "))
	fmt.Fprintln(w, "\nRegions")
	return renderRegionTable(w, l.Regions)
}

// ─── CSV / TSV ────────────────────────────────────────────────────────────────

func renderDelimited(w io.Writer, result *model.Result, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	switch data := result.Data.(type) {
	case []model.Creature:
		_ = cw.Write(creatureHeader)
		for _, c := range data {
			_ = cw.Write(creatureRecord(c))
		}
	case *model.Creature:
		_ = cw.Write(creatureHeader)
		_ = cw.Write(creatureRecord(*data))
	case []model.Region:
		_ = cw.Write([]string{"id", "name", "location_count"})
		for _, r := range data {
			_ = cw.Write([]string{strconv.Itoa(r.ID), r.Name, strconv.Itoa(r.LocationCount)})
		}
	case []string:
		_ = cw.Write([]string{"name"})
		for _, name := range data {
			_ = cw.Write([]string{name})
		}
	case []int:
		_ = cw.Write([]string{"id"})
		for _, id := range data {
			_ = cw.Write([]string{strconv.Itoa(id)})
		}
	default:
		// Fallback: serialize as JSON on a single line
		b, _ := json.Marshal(result.Data)
		_ = cw.Write([]string{string(b)})
	}

	cw.Flush()
	return cw.Error()
}

var creatureHeader = []string{"id", "name", "types", "height", "weight", "favorite"}

func creatureRecord(c model.Creature) []string {
	return []string{
		strconv.Itoa(c.ID),
		c.Name,
		strings.Join(c.TypeNames(), "|"),
		optInt(c.Height),
		optInt(c.Weight),
		strconv.FormatBool(c.IsFavorited),
	}
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func renderMarkdown(w io.Writer, result *model.Result) error {
	switch data := result.Data.(type) {
	case []model.Creature:
		fmt.Fprintf(w, "| NO. | NAME | TYPES | FAV |\n|-----|------|-------|-----|\n")
		for _, c := range data {
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
				c.FormattedNumber(), mdEscape(c.DisplayName()),
				mdEscape(strings.Join(typeDisplayNames(&c), ", ")), favMark(c.IsFavorited))
		}
		return nil
	case []model.Region:
		fmt.Fprintf(w, "| ID | REGION | LOCATIONS |\n|----|--------|-----------|\n")
		for _, r := range data {
			fmt.Fprintf(w, "| %d | %s | %d |\n", r.ID, mdEscape(r.DisplayName()), r.LocationCount)
		}
		return nil
	default:
		return renderJSON(w, result)
	}
}

// ─── Warnings / Stats Footer ─────────────────────────────────────────────────

// PrintFooter writes warnings and stats to w when verbose mode is on.
func PrintFooter(w io.Writer, result *model.Result, verbose bool) {
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠  %s\n", warn)
	}
	if verbose {
		pages := ""
		if result.Stats.Pages > 0 {
			pages = fmt.Sprintf(" • %d pages", result.Stats.Pages)
		}
		fmt.Fprintf(w, "\n[%s • %d items%s • %dms]\n",
			result.GeneratedAt.Format(time.RFC3339),
			result.Stats.Items,
			pages,
			result.Stats.DurationMs,
		)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func typeDisplayNames(c *model.Creature) []string {
	out := make([]string, len(c.Types))
	for i, t := range c.Types {
		out[i] = t.DisplayName()
	}
	return out
}

func favMark(v bool) string {
	if v {
		return "★"
	}
	return ""
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// statBar draws ratio (0..1) as a bar width cells wide.
func statBar(ratio float64, width int) string {
	n := int(ratio*float64(width) + 0.5)
	if n > width {
		n = width
	}
	if n < 0 {
		n = 0
	}
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
