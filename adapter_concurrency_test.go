package binder

import (
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinder_ConcurrentMap(t *testing.T) {
	t.Parallel()
	b := newCommonBinder(t)

	var start sync.WaitGroup
	start.Add(1)

	workers := runtime.GOMAXPROCS(0) * 3
	var wg sync.WaitGroup
	wg.Add(workers)

	errs := make(chan string, workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			start.Wait()
			for i := 0; i < 200; i++ {
				a := &EntityA{Name1: fmt.Sprintf("a-%d-%d", w, i)}
				e := &EntityB{Name2: fmt.Sprintf("b-%d-%d", w, i)}
				commons, err := b.Map([]any{a, e})
				if err != nil {
					errs <- fmt.Sprintf("map error: %v", err)
					return
				}
				if err := commons[1].Set("Name", "set"); err != nil {
					errs <- fmt.Sprintf("set error: %v", err)
					return
				}
				first, err := commons[0].Get("Name")
				if err != nil || first != a.Name1 {
					errs <- fmt.Sprintf("name mismatch: got %v want %q (%v)", first, a.Name1, err)
					return
				}
				if e.Name2 != "set" {
					errs <- fmt.Sprintf("write not forwarded: got %q", e.Name2)
					return
				}
				if _, err := commons[0].Get("Missing"); err == nil {
					errs <- "unmapped property did not fail"
					return
				}
			}
		}()
	}

	start.Done()
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatalf("concurrent map failed: %s", msg)
	}
}

func TestBinder_ConcurrentResolutionCache(t *testing.T) {
	t.Parallel()
	b, err := NewBuilder[Titled]().
		WithType((*Namer)(nil), func(tb *TypeBuilder[Titled]) *Builder[Titled] {
			return tb.WithProperty("t.Title", "n.Name").FinalizeType()
		}).
		WithType((*NamedLabel)(nil), func(tb *TypeBuilder[Titled]) *Builder[Titled] {
			return tb.WithProperty("t.Title", "n.Label").FinalizeType()
		}).
		Build()
	require.NoError(t, err)

	kinds := 8
	var wg sync.WaitGroup
	wg.Add(kinds)
	errCh := make(chan string, kinds)

	for k := 0; k < kinds; k++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 150; i++ {
				var item any = &onlyNamed{name: "n"}
				want := "n"
				if (k+i)%2 == 0 {
					item = namedLabel{name: "n", label: "l"}
					want = "l"
				}
				a, err := b.MapOne(item)
				if err != nil {
					errCh <- fmt.Sprintf("map error: %v", err)
					return
				}
				got, err := a.Get("Title")
				if err != nil || got != want {
					errCh <- fmt.Sprintf("title mismatch: got %v want %q (%v)", got, want, err)
					return
				}
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		close(errCh)
		for msg := range errCh {
			t.Errorf("concurrent resolution error: %s", msg)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for concurrent resolution test")
	}

	assert.Len(t, b.Types(), 2)
}
