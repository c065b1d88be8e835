package extractor

import (
	"context"
	"strings"
	"sync"
)

// Call records one invocation of a FakeRunner.
type Call struct {
	Args []string
}

// HasArg reports whether the call carried an argument with the given prefix.
func (c Call) HasArg(prefix string) bool {
	for _, a := range c.Args {
		if strings.HasPrefix(a, prefix) {
			return true
		}
	}
	return false
}

// FakeRunner answers extraction calls from canned output without
// starting a process.
type FakeRunner struct {
	mu      sync.Mutex
	catalog Result
	tables  map[string]Result
	err     error
	calls   []Call
}

// NewFakeRunner returns a runner whose catalog dump is catalogJSON.
func NewFakeRunner(catalogJSON string) *FakeRunner {
	return &FakeRunner{
		catalog: Result{Stdout: []byte(catalogJSON)},
		tables:  make(map[string]Result),
	}
}

// SetCatalog replaces the catalog dump.
func (f *FakeRunner) SetCatalog(res Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.catalog = res
}

// SetTable registers the output for a table call with exactly args.
func (f *FakeRunner) SetTable(args []string, res Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[strings.Join(args, " ")] = res
}

// SetError makes every call fail to start with err.
func (f *FakeRunner) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Run implements Runner.
func (f *FakeRunner) Run(_ context.Context, args ...string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Args: append([]string(nil), args...)})
	if f.err != nil {
		return Result{}, f.err
	}
	if len(args) == 0 {
		return f.catalog, nil
	}
	if res, ok := f.tables[strings.Join(args, " ")]; ok {
		return res, nil
	}
	return Result{Stdout: []byte(`{"rows":[]}`)}, nil
}

// Calls returns every recorded invocation in order.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CatalogCalls counts the invocations that dumped the catalog.
func (f *FakeRunner) CatalogCalls() int {
	n := 0
	for _, c := range f.Calls() {
		if len(c.Args) == 0 {
			n++
		}
	}
	return n
}
