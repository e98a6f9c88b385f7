package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/derickschaefer/dex/internal/config"
	"github.com/derickschaefer/dex/internal/model"
)

// ─── Fake catalog ─────────────────────────────────────────────────────────────

// catalogServer serves creatures 1..total. IDs in broken answer 500 on
// their detail endpoint.
func catalogServer(t *testing.T, total int, broken ...int) *httptest.Server {
	t.Helper()
	bad := make(map[int]bool)
	for _, id := range broken {
		bad[id] = true
	}

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/pokemon", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		var results []map[string]string
		for id := offset + 1; id <= total && id <= offset+limit; id++ {
			results = append(results, map[string]string{
				"name": fmt.Sprintf("mon-%d", id),
				"url":  fmt.Sprintf("%s/pokemon/%d/", srv.URL, id),
			})
		}
		var next interface{}
		if offset+limit < total {
			next = fmt.Sprintf("%s/pokemon?offset=%d&limit=%d", srv.URL, offset+limit, limit)
		}
		writeJSON(w, map[string]interface{}{"count": total, "next": next, "previous": nil, "results": results})
	})
	mux.HandleFunc("/pokemon/", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(strings.Trim(strings.TrimPrefix(r.URL.Path, "/pokemon/"), "/"))
		if err != nil || id > total {
			http.NotFound(w, r)
			return
		}
		if bad[id] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{
			"id":     id,
			"name":   fmt.Sprintf("mon-%d", id),
			"height": 10,
			"weight": 100,
			"types": []interface{}{
				map[string]interface{}{"slot": 1, "type": map[string]interface{}{"name": "fire"}},
			},
			"stats": []interface{}{
				map[string]interface{}{"base_stat": 50, "effort": 1, "stat": map[string]interface{}{"name": "hp"}},
			},
			"sprites": map[string]interface{}{"front_default": nil, "front_shiny": nil},
		})
	})
	mux.HandleFunc("/type", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"count": 2, "next": nil, "previous": nil,
			"results": []map[string]string{
				{"name": "fire", "url": srv.URL + "/type/10/"},
				{"name": "water", "url": srv.URL + "/type/11/"},
			},
		})
	})
	mux.HandleFunc("/type/10", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"id": 10, "name": "fire"})
	})
	mux.HandleFunc("/region", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"count": 2, "next": nil, "previous": nil,
			"results": []map[string]string{
				{"name": "kanto", "url": srv.URL + "/region/1/"},
				{"name": "johto", "url": srv.URL + "/region/2/"},
			},
		})
	})
	mux.HandleFunc("/region/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(strings.Trim(strings.TrimPrefix(r.URL.Path, "/region/"), "/"))
		names := map[int]string{1: "kanto", 2: "johto"}
		locations := []map[string]string{}
		for i := 0; i < id; i++ {
			locations = append(locations, map[string]string{"name": fmt.Sprintf("loc-%d", i), "url": "x"})
		}
		writeJSON(w, map[string]interface{}{
			"id":        id,
			"name":      names[id],
			"locations": locations,
		})
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ─── Harness ──────────────────────────────────────────────────────────────────

// env points dex at srv and a private database, in a scratch working
// directory so no config.json or .env leaks in.
func env(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	db := filepath.Join(dir, "dex.db")
	t.Setenv(config.EnvBaseURL, srv.URL+"/")
	t.Setenv(config.EnvDBPath, db)
	t.Setenv(config.EnvBackend, "")
	t.Setenv(config.EnvLogLevel, "error")
	return db
}

// resetFlags restores every flag in the tree to its default so runs do
// not leak into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func decodeCreatures(t *testing.T, out string) []model.Creature {
	t.Helper()
	var res struct {
		Kind  string            `json:"kind"`
		Data  []model.Creature  `json:"data"`
		Stats model.ResultStats `json:"stats"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	return res.Data
}

func creatureIDs(cs []model.Creature) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

// ─── Routing ──────────────────────────────────────────────────────────────────

func TestSubcommandRouting(t *testing.T) {
	paths := [][]string{
		{"list"}, {"get"}, {"home"}, {"types"}, {"regions"},
		{"fav", "list"}, {"fav", "add"}, {"fav", "remove"}, {"fav", "toggle"},
		{"fav", "clear"}, {"fav", "export"},
		{"cache", "stats"}, {"cache", "clear"}, {"cache", "compact"},
		{"config", "init"}, {"config", "get"}, {"config", "set"},
		{"version"}, {"completion"},
	}
	for _, p := range paths {
		c, _, err := rootCmd.Find(p)
		if err != nil || c.Name() != p[len(p)-1] {
			t.Errorf("command %v not registered (err=%v)", p, err)
		}
	}
}

// ─── list ─────────────────────────────────────────────────────────────────────

func TestListPagesAndSkipsFailures(t *testing.T) {
	srv := catalogServer(t, 5, 3)
	env(t, srv)

	out, _, err := run(t, "", "list", "--pages", "2", "--page-size", "2", "--format", "json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := creatureIDs(decodeCreatures(t, out))
	want := []int{1, 2, 4}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestListAllStopsAtEnd(t *testing.T) {
	srv := catalogServer(t, 5)
	env(t, srv)

	out, _, err := run(t, "", "list", "--all", "--page-size", "2", "--format", "json")
	if err != nil {
		t.Fatalf("list --all: %v", err)
	}
	if got := decodeCreatures(t, out); len(got) != 5 {
		t.Errorf("expected 5 creatures, got %d", len(got))
	}
}

func TestListMarksFavorites(t *testing.T) {
	srv := catalogServer(t, 4)
	env(t, srv)

	if _, _, err := run(t, "", "fav", "add", "2"); err != nil {
		t.Fatalf("fav add: %v", err)
	}
	out, _, err := run(t, "", "list", "--favorites", "--page-size", "4", "--format", "json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := decodeCreatures(t, out)
	if len(got) != 1 || got[0].ID != 2 || !got[0].IsFavorited {
		t.Errorf("expected only #2 favorited, got %+v", got)
	}
}

func TestListRejectsZeroPages(t *testing.T) {
	if _, _, err := run(t, "", "list", "--pages", "0"); err == nil {
		t.Error("expected error for --pages 0")
	}
}

// ─── get ──────────────────────────────────────────────────────────────────────

func TestGetSingleDetail(t *testing.T) {
	srv := catalogServer(t, 3)
	env(t, srv)

	out, _, err := run(t, "", "get", "#2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for _, want := range []string{"#2", "mon-2", "1.0 m", "10.0 kg", "hp"} {
		if !strings.Contains(strings.ToLower(out), want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}
}

func TestGetManyCollectsWarnings(t *testing.T) {
	srv := catalogServer(t, 3, 2)
	env(t, srv)

	out, stderr, err := run(t, "", "get", "1", "2", "3", "--format", "json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := creatureIDs(decodeCreatures(t, out)); fmt.Sprint(got) != "[1 3]" {
		t.Errorf("expected [1 3], got %v", got)
	}
	if !strings.Contains(stderr, "creature 2") {
		t.Errorf("expected warning for #2, got %q", stderr)
	}
}

func TestGetNotFound(t *testing.T) {
	srv := catalogServer(t, 3)
	env(t, srv)

	if _, _, err := run(t, "", "get", "99"); err == nil {
		t.Error("expected error for unknown creature")
	}
}

// ─── home / types / regions ───────────────────────────────────────────────────

func TestHome(t *testing.T) {
	srv := catalogServer(t, 12)
	env(t, srv)

	out, _, err := run(t, "", "home", "--format", "json")
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	var res struct {
		Data model.Landing `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(res.Data.Featured) != config.DefaultFeaturedCount {
		t.Errorf("featured: expected %d, got %d", config.DefaultFeaturedCount, len(res.Data.Featured))
	}
	if fmt.Sprint(res.Data.Types) != "[fire water]" {
		t.Errorf("types: got %v", res.Data.Types)
	}
	if len(res.Data.Regions) != 2 || res.Data.Regions[1].LocationCount != 2 {
		t.Errorf("regions: got %+v", res.Data.Regions)
	}
}

func TestTypes(t *testing.T) {
	srv := catalogServer(t, 1)
	env(t, srv)

	out, _, err := run(t, "", "types", "--format", "jsonl")
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	if !strings.Contains(out, "fire") || !strings.Contains(out, "water") {
		t.Errorf("types output: %q", out)
	}

	out, _, err = run(t, "", "types", "10", "--format", "jsonl")
	if err != nil {
		t.Fatalf("types 10: %v", err)
	}
	if !strings.Contains(out, "fire") || strings.Contains(out, "water") {
		t.Errorf("types 10 output: %q", out)
	}
}

func TestRegionsKeepOrder(t *testing.T) {
	srv := catalogServer(t, 1)
	env(t, srv)

	out, _, err := run(t, "", "regions", "--format", "tsv")
	if err != nil {
		t.Fatalf("regions: %v", err)
	}
	kanto := strings.Index(out, "1\tkanto\t1")
	johto := strings.Index(out, "2\tjohto\t2")
	if kanto < 0 || johto < 0 || kanto > johto {
		t.Errorf("regions out of order:\n%s", out)
	}
}

// ─── fav ──────────────────────────────────────────────────────────────────────

func TestFavLifecycle(t *testing.T) {
	srv := catalogServer(t, 10)
	env(t, srv)

	if _, _, err := run(t, "", "fav", "add", "7", "3", "3"); err != nil {
		t.Fatalf("fav add: %v", err)
	}
	out, _, err := run(t, "", "fav", "toggle", "5")
	if err != nil || !strings.Contains(out, "added") {
		t.Fatalf("fav toggle on: out=%q err=%v", out, err)
	}
	if _, _, err := run(t, "", "fav", "remove", "7"); err != nil {
		t.Fatalf("fav remove: %v", err)
	}

	out, _, err = run(t, "", "fav", "list", "--format", "jsonl")
	if err != nil {
		t.Fatalf("fav list: %v", err)
	}
	if out != "{\"id\":3}\n{\"id\":5}\n" {
		t.Errorf("fav list: got %q", out)
	}

	out, _, err = run(t, "", "fav", "toggle", "5")
	if err != nil || !strings.Contains(out, "removed") {
		t.Fatalf("fav toggle off: out=%q err=%v", out, err)
	}
}

func TestFavAddFromStdin(t *testing.T) {
	srv := catalogServer(t, 10)
	env(t, srv)

	in := "// picked\n{\"id\":4,\"name\":\"mon-4\"}\n#9\n"
	out, _, err := run(t, in, "fav", "add", "-")
	if err != nil {
		t.Fatalf("fav add -: %v", err)
	}
	if !strings.Contains(out, "Added 2 of 2") {
		t.Errorf("unexpected status: %q", out)
	}
}

func TestFavExportRoundTrip(t *testing.T) {
	srv := catalogServer(t, 10)
	env(t, srv)

	if _, _, err := run(t, "", "fav", "add", "2", "6"); err != nil {
		t.Fatalf("fav add: %v", err)
	}
	exported, _, err := run(t, "", "fav", "export")
	if err != nil {
		t.Fatalf("fav export: %v", err)
	}
	if strings.Count(exported, "\n") != 2 {
		t.Fatalf("expected 2 JSONL records, got %q", exported)
	}

	if _, _, err := run(t, "", "fav", "clear", "--yes"); err != nil {
		t.Fatalf("fav clear: %v", err)
	}
	if _, _, err := run(t, exported, "fav", "add", "-"); err != nil {
		t.Fatalf("fav add from export: %v", err)
	}
	out, _, err := run(t, "", "fav", "list", "--format", "jsonl")
	if err != nil {
		t.Fatalf("fav list: %v", err)
	}
	if out != "{\"id\":2}\n{\"id\":6}\n" {
		t.Errorf("after round trip: got %q", out)
	}
}

func TestFavRejectsZeroID(t *testing.T) {
	srv := catalogServer(t, 3)
	env(t, srv)

	if _, _, err := run(t, "", "fav", "add", "0"); err == nil {
		t.Error("fav add 0: expected error")
	}
	if _, _, err := run(t, "", "fav", "toggle", "0"); err == nil {
		t.Error("fav toggle 0: expected error")
	}
	if _, _, err := run(t, "", "fav", "add", "2", "#0"); err == nil {
		t.Error("fav add 2 #0: expected error")
	}

	out, _, err := run(t, "", "fav", "list", "--format", "jsonl")
	if err != nil {
		t.Fatalf("fav list: %v", err)
	}
	if out != "" {
		t.Errorf("nothing should have been stored, got %q", out)
	}
}

func TestFavClearRequiresYes(t *testing.T) {
	if _, _, err := run(t, "", "fav", "clear"); err == nil {
		t.Error("expected refusal without --yes")
	}
}

func TestFavFileBackend(t *testing.T) {
	srv := catalogServer(t, 3)
	env(t, srv)
	settings := filepath.Join(t.TempDir(), "settings.json")

	if _, _, err := run(t, "", "fav", "add", "3", "1", "--backend", "file", "--db", settings); err != nil {
		t.Fatalf("fav add: %v", err)
	}
	data, err := os.ReadFile(settings)
	if err != nil {
		t.Fatalf("reading settings: %v", err)
	}
	var doc map[string][]int
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("settings file is not JSON: %v\n%s", err, data)
	}
	if fmt.Sprint(doc["favoritePokemonIds"]) != "[1 3]" {
		t.Errorf("settings file: %s", data)
	}
}

// ─── cache ────────────────────────────────────────────────────────────────────

func TestCacheStatsAndCompact(t *testing.T) {
	srv := catalogServer(t, 3)
	db := env(t, srv)

	if _, _, err := run(t, "", "fav", "add", "1"); err != nil {
		t.Fatalf("fav add: %v", err)
	}
	out, _, err := run(t, "", "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	for _, want := range []string{db, "settings", "favoritePokemonIds"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}

	if _, _, err := run(t, "", "cache", "compact"); err != nil {
		t.Fatalf("cache compact: %v", err)
	}
	out, _, err = run(t, "", "fav", "list", "--format", "jsonl")
	if err != nil || out != "{\"id\":1}\n" {
		t.Errorf("favorites after compact: out=%q err=%v", out, err)
	}
}

func TestCacheNeedsBolt(t *testing.T) {
	srv := catalogServer(t, 1)
	env(t, srv)

	_, _, err := run(t, "", "cache", "stats", "--backend", "file", "--db", filepath.Join(t.TempDir(), "s.json"))
	if err == nil || !strings.Contains(err.Error(), "bolt") {
		t.Errorf("expected bolt-backend error, got %v", err)
	}
}

// ─── config ───────────────────────────────────────────────────────────────────

func TestConfigInitSetGet(t *testing.T) {
	srv := catalogServer(t, 1)
	env(t, srv)

	if _, _, err := run(t, "", "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, _, err := run(t, "", "config", "init"); err == nil {
		t.Error("second init should refuse to overwrite")
	}
	if _, _, err := run(t, "", "config", "set", "page_size", "50"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	if _, _, err := run(t, "", "config", "set", "page_size", "lots"); err == nil {
		t.Error("expected error for non-numeric page_size")
	}

	out, _, err := run(t, "", "config", "get", "page_size")
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	if strings.TrimSpace(out) != "50" {
		t.Errorf("page_size: got %q", out)
	}

	out, _, err = run(t, "", "config", "get", "page_size", "--page-size", "7")
	if err != nil || strings.TrimSpace(out) != "7" {
		t.Errorf("flag should override file: out=%q err=%v", out, err)
	}
}

func TestVersionJSON(t *testing.T) {
	out, _, err := run(t, "", "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var info versionInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil || info.Version == "" {
		t.Errorf("version json: %q err=%v", out, err)
	}
}
