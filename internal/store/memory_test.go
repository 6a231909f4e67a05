package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/mastermind/internal/game"
)

func TestMemoryStoreSaveGet(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	g := game.New(game.DefaultRules(), "1234")
	if err := st.Save(ctx, g); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := st.Get(ctx, g.ID)
	if err != nil || got != g {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}
	if err := st.Update(ctx, "missing", func(*game.Game) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update(missing) err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreUpdateSerialises(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	g := game.New(game.Rules{Guesses: 25, Digits: 4, AllowRepeats: true, DistinctDigits: 10}, "1234")
	_ = st.Save(ctx, g)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Update(ctx, g.ID, func(g *game.Game) error {
				_, _, err := g.ApplyGuess("5678")
				return err
			})
		}()
	}
	wg.Wait()

	if g.History.Len() != 20 || g.Remaining != 5 {
		t.Fatalf("history=%d remaining=%d, want 20 and 5", g.History.Len(), g.Remaining)
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	old := game.New(game.DefaultRules(), "1234")
	old.StartedAt = time.Now().Add(-48 * time.Hour)
	fresh := game.New(game.DefaultRules(), "1234")
	_ = st.Save(ctx, old)
	_ = st.Save(ctx, fresh)

	if n := st.Sweep(ctx, time.Now().Add(-24*time.Hour)); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if _, err := st.Get(ctx, old.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("old game survived the sweep")
	}
	if _, err := st.Get(ctx, fresh.ID); err != nil {
		t.Fatal("fresh game was swept")
	}
}
