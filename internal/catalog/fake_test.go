package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/derickschaefer/dex/internal/model"
)

var errDetail = errors.New("detail unavailable")

// fakeSource is an in-memory catalog. Pages are keyed by offset; detail
// records are synthesised from the ID unless listed in failIDs.
type fakeSource struct {
	mu sync.Mutex

	pages   map[int]*model.Page
	listErr map[int]error
	failIDs map[int]bool

	// block, when set for an offset, makes ListCreatures signal entered
	// and wait for release before returning.
	block map[int]*gate

	// onDetail runs before a detail lookup returns.
	onDetail func(id int)

	listCalls   []int
	detailCalls []int

	types        []string
	typesErr     error
	regions      []model.EntryRef
	regionsErr   error
	regionFail   map[int]bool
	regionCalls  int
	featuredSeen int
}

type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

func newFake() *fakeSource {
	return &fakeSource{
		pages:      map[int]*model.Page{},
		listErr:    map[int]error{},
		failIDs:    map[int]bool{},
		block:      map[int]*gate{},
		regionFail: map[int]bool{},
	}
}

func entry(id int) model.EntryRef {
	return model.EntryRef{
		Name: fmt.Sprintf("mon-%d", id),
		URL:  fmt.Sprintf("https://pokeapi.co/api/v2/pokemon/%d/", id),
	}
}

// page builds a list page; next controls whether a next-page token is set.
func page(next bool, refs ...model.EntryRef) *model.Page {
	p := &model.Page{Count: 1000, Results: refs}
	if next {
		n := "https://pokeapi.co/api/v2/pokemon?offset=next"
		p.Next = &n
	}
	return p
}

func ids(cs []model.Creature) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func (f *fakeSource) ListCreatures(ctx context.Context, limit, offset int) (*model.Page, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, offset)
	g := f.block[offset]
	p, err := f.pages[offset], f.listErr[offset]
	if limit > 0 && offset == 0 {
		f.featuredSeen = limit
	}
	f.mu.Unlock()

	if g != nil {
		close(g.entered)
		<-g.release
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return page(false), nil
	}
	return p, nil
}

func (f *fakeSource) GetCreature(ctx context.Context, id int) (*model.Creature, error) {
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, id)
	fail := f.failIDs[id]
	hook := f.onDetail
	f.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fail {
		return nil, errDetail
	}
	h, w := id*10, id*100
	return &model.Creature{
		ID:     id,
		Name:   fmt.Sprintf("mon-%d", id),
		Types:  []model.TypeRef{{Name: "normal"}},
		Height: &h,
		Weight: &w,
		Stats: []model.StatEntry{
			{StatName: "speed", BaseValue: 45},
			{StatName: "hp", BaseValue: 45},
		},
	}, nil
}

func (f *fakeSource) ListTypes(ctx context.Context, limit, offset int) (*model.Page, error) {
	if f.typesErr != nil {
		return nil, f.typesErr
	}
	p := &model.Page{}
	for i, name := range f.types {
		p.Results = append(p.Results, model.EntryRef{
			Name: name,
			URL:  fmt.Sprintf("https://pokeapi.co/api/v2/type/%d/", i+1),
		})
	}
	return p, nil
}

func (f *fakeSource) ListRegions(ctx context.Context) (*model.Page, error) {
	if f.regionsErr != nil {
		return nil, f.regionsErr
	}
	return &model.Page{Results: f.regions}, nil
}

func (f *fakeSource) GetRegion(ctx context.Context, id int) (*model.Region, error) {
	f.mu.Lock()
	f.regionCalls++
	fail := f.regionFail[id]
	f.mu.Unlock()
	if fail {
		return nil, errDetail
	}
	return &model.Region{ID: id, Name: fmt.Sprintf("region-%d", id), LocationCount: id * 10}, nil
}

func (f *fakeSource) lists() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.listCalls...)
}

func (f *fakeSource) details() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.detailCalls...)
}

// favSet is a FavoriteLookup over a mutable set.
type favSet struct {
	mu  sync.Mutex
	ids map[int]bool
}

func newFavs(ids ...int) *favSet {
	f := &favSet{ids: map[int]bool{}}
	for _, id := range ids {
		f.ids[id] = true
	}
	return f
}

func (f *favSet) Contains(id int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ids[id]
}

func (f *favSet) set(id int, v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids[id] = v
}
