package render_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/render"
)

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func pikachu() model.Creature {
	return model.Creature{
		ID:       25,
		Name:     "pikachu",
		Types:    []model.TypeRef{{Name: "electric"}},
		ImageURL: strp("https://img.example/25.png"),
		Height:   intp(4),
		Weight:   intp(60),
		Stats: []model.StatEntry{
			{StatName: "speed", BaseValue: 90, Effort: 2},
			{StatName: "hp", BaseValue: 35},
		},
		IsFavorited: true,
	}
}

func result(kind string, data interface{}) *model.Result {
	return &model.Result{
		Kind:        kind,
		GeneratedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Command:     "dex test",
		Data:        data,
		Stats:       model.ResultStats{Items: 1, DurationMs: 12},
	}
}

func TestRenderCreatureTable(t *testing.T) {
	var buf bytes.Buffer
	res := result(model.ResultCreatures, []model.Creature{pikachu()})
	if err := render.Render(&buf, res, render.FormatTable); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"#25", "Pikachu", "Electric", "0.4 M", "6.0 KG", "★"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCreatureDetailStats(t *testing.T) {
	var buf bytes.Buffer
	c := pikachu()
	if err := render.Render(&buf, result(model.ResultCreature, &c), render.FormatTable); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	hp := strings.Index(out, "HP")
	spd := strings.Index(out, "SPD")
	if hp < 0 || spd < 0 || hp > spd {
		t.Errorf("stats should list HP before SPD:\n%s", out)
	}
	if !strings.Contains(out, "https://img.example/25.png") {
		t.Error("artwork URL missing")
	}
	if !strings.Contains(out, "█") {
		t.Error("stat bar missing")
	}
}

func TestRenderCreatureDetailWithoutStats(t *testing.T) {
	var buf bytes.Buffer
	c := pikachu()
	c.Stats = nil
	if err := render.Render(&buf, result(model.ResultCreature, &c), render.FormatTable); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(buf.String(), "STAT") {
		t.Error("no stat table expected when stats are unknown")
	}
}

func TestRenderJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	res := result(model.ResultCreatures, []model.Creature{pikachu()})
	if err := render.Render(&buf, res, render.FormatJSON); err != nil {
		t.Fatalf("Render: %v", err)
	}
	var got struct {
		Kind string           `json:"kind"`
		Data []model.Creature `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Kind != "creatures" || len(got.Data) != 1 || !got.Data[0].IsFavorited {
		t.Errorf("unexpected envelope: %+v", got)
	}
}

func TestRenderJSONLOneRecordPerLine(t *testing.T) {
	var buf bytes.Buffer
	a, b := pikachu(), pikachu()
	b.ID = 26
	res := result(model.ResultCreatures, []model.Creature{a, b})
	if err := render.Render(&buf, res, render.FormatJSONL); err != nil {
		t.Fatalf("Render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var c model.Creature
	if err := json.Unmarshal([]byte(lines[1]), &c); err != nil || c.ID != 26 {
		t.Errorf("line 2: id=%d err=%v", c.ID, err)
	}
}

func TestRenderJSONLFavorites(t *testing.T) {
	var buf bytes.Buffer
	if err := render.Render(&buf, result(model.ResultFavorites, []int{1, 4}), render.FormatJSONL); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.String() != "{\"id\":1}\n{\"id\":4}\n" {
		t.Errorf("favorites jsonl: got %q", buf.String())
	}
}

func TestRenderCSVCreatures(t *testing.T) {
	var buf bytes.Buffer
	c := pikachu()
	c.Weight = nil
	if err := render.Render(&buf, result(model.ResultCreatures, []model.Creature{c}), render.FormatCSV); err != nil {
		t.Fatalf("Render: %v", err)
	}
	recs, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(recs))
	}
	want := []string{"25", "pikachu", "electric", "4", "", "true"}
	for i := range want {
		if recs[1][i] != want[i] {
			t.Errorf("col %d: expected %q, got %q", i, want[i], recs[1][i])
		}
	}
}

func TestRenderTSVRegions(t *testing.T) {
	var buf bytes.Buffer
	regions := []model.Region{{ID: 1, Name: "kanto", LocationCount: 83}}
	if err := render.Render(&buf, result(model.ResultRegions, regions), render.FormatTSV); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), "1\tkanto\t83") {
		t.Errorf("tsv row missing: %q", buf.String())
	}
}

func TestRenderMarkdownEscapes(t *testing.T) {
	var buf bytes.Buffer
	c := pikachu()
	c.Name = "odd|name"
	if err := render.Render(&buf, result(model.ResultCreatures, []model.Creature{c}), render.FormatMD); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(buf.String(), `\|`) {
		t.Errorf("pipe not escaped: %q", buf.String())
	}
}

func TestRenderLanding(t *testing.T) {
	var buf bytes.Buffer
	l := &model.Landing{
		Featured: []model.Creature{pikachu()},
		Types:    []string{"fire", "water"},
		Regions:  []model.Region{{ID: 2, Name: "johto", LocationCount: 50}},
	}
	if err := render.Render(&buf, result(model.ResultLanding, l), render.FormatTable); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Featured", "Pikachu", "Types (2)", "Fire", "Water", "Regions", "Johto", "50"} {
		if !strings.Contains(out, want) {
			t.Errorf("landing missing %q", want)
		}
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range render.Formats {
		if !render.ValidFormat(f) {
			t.Errorf("%q should be valid", f)
		}
	}
	if render.ValidFormat("xml") {
		t.Error("xml should be invalid")
	}
}

func TestPrintFooter(t *testing.T) {
	var buf bytes.Buffer
	res := result(model.ResultCreatures, nil)
	res.Warnings = []string{"2 entries skipped"}
	res.Stats.Pages = 3

	render.PrintFooter(&buf, res, false)
	if !strings.Contains(buf.String(), "2 entries skipped") {
		t.Error("warnings always printed")
	}
	if strings.Contains(buf.String(), "items") {
		t.Error("stats only in verbose mode")
	}

	buf.Reset()
	render.PrintFooter(&buf, res, true)
	if !strings.Contains(buf.String(), "3 pages") || !strings.Contains(buf.String(), "12ms") {
		t.Errorf("verbose footer: %q", buf.String())
	}
}
