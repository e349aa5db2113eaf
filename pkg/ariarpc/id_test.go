package ariarpc

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestIDMarshalJSON(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{IntID(42), `42`},
		{IntID(-7), `-7`},
		{IntID(1729000000000000001), `1729000000000000001`},
		{StringID("NH9907_P12"), `"NH9907_P12"`},
		{StringID(""), `""`},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.id)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", tt.id, err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.id, got, tt.want)
		}
	}
}

func TestIDUnmarshalJSON(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`42`), &id); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if n, ok := id.Int(); !ok || n != 42 {
		t.Fatalf("expected int 42, got %v", id)
	}
	if err := json.Unmarshal([]byte(`"abc"`), &id); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if s, ok := id.Str(); !ok || s != "abc" {
		t.Fatalf("expected string abc, got %v", id)
	}
	if id == IntID(0) {
		t.Fatal("string id must differ from the zero int id")
	}
}

func TestIDUnmarshalJSON_Invalid(t *testing.T) {
	for _, in := range []string{`null`, `true`, `1.5`, `1e3`, `{}`, `[1]`, ``} {
		var id ID
		if err := id.UnmarshalJSON([]byte(in)); !errors.Is(err, ErrInvalidID) {
			t.Errorf("UnmarshalJSON(%q) = %v, want ErrInvalidID", in, err)
		}
	}
}

func TestIDStringAndIntDistinct(t *testing.T) {
	if IntID(1) == StringID("1") {
		t.Fatal("IntID(1) and StringID(\"1\") must not be equal")
	}
	if IntID(1).String() != "1" || StringID("1").String() != `"1"` {
		t.Fatalf("unexpected String forms: %s %s", IntID(1), StringID("1"))
	}
}

func TestIDSequence_StrictlyIncreasing(t *testing.T) {
	before := time.Now().UnixNano()
	s := newIDSequence()
	prev, _ := s.next().Int()
	if prev <= before {
		t.Fatalf("first id %d not seeded from the clock (%d)", prev, before)
	}
	for i := 0; i < 10000; i++ {
		n, ok := s.next().Int()
		if !ok {
			t.Fatal("generated id is not an integer")
		}
		if n <= prev {
			t.Fatalf("id %d not greater than previous %d", n, prev)
		}
		prev = n
	}
}

func TestIDSequence_ConcurrentUnique(t *testing.T) {
	s := newIDSequence()
	const workers, per = 16, 500
	var (
		mu   sync.Mutex
		seen = make(map[ID]bool, workers*per)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]ID, 0, per)
			for i := 0; i < per; i++ {
				ids = append(ids, s.next())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				if seen[id] {
					t.Errorf("duplicate id %s", id)
				}
				seen[id] = true
			}
		}()
	}
	wg.Wait()
	if len(seen) != workers*per {
		t.Fatalf("expected %d ids, got %d", workers*per, len(seen))
	}
}
