package model

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"
)

func TestTextSet_TruncatesLongInput(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 100)
	txt := NewText(long)
	if got := txt.String(); got != strings.Repeat("a", 31) {
		t.Fatalf("String() = %q (len %d), want 31 a's", got, len(got))
	}
}

func TestTextSet_KeepsExactCapacity(t *testing.T) {
	t.Parallel()

	exact := "abcdefghijklmnopqrstuvwxyz01234"
	if len(exact) != 31 {
		t.Fatalf("fixture length = %d", len(exact))
	}
	if got := NewText(exact).String(); got != exact {
		t.Fatalf("String() = %q, want %q", got, exact)
	}
}

func TestTextSet_EmptyInput(t *testing.T) {
	t.Parallel()

	txt := NewText("Paris")
	txt.Set("")
	if got := txt.String(); got != "" {
		t.Fatalf("String() = %q, want empty", got)
	}
	if txt.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", txt.Len())
	}
}

func TestTextSet_DoesNotSplitRunes(t *testing.T) {
	t.Parallel()

	// 30 ASCII bytes followed by a two-byte rune: the cut lands inside it.
	in := strings.Repeat("x", 30) + "é" + "tail"
	got := NewText(in).String()
	if got != strings.Repeat("x", 30) {
		t.Fatalf("String() = %q, want 30 x's", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is not valid UTF-8: %q", got)
	}
}

func TestTextSet_OverwritesInPlace(t *testing.T) {
	t.Parallel()

	txt := &Text{}
	before := txt
	txt.Set("Cloudy with a chance of meatballs tonight")
	txt.Set("Sunny")
	if before != txt || txt.String() != "Sunny" {
		t.Fatalf("String() = %q, want Sunny", txt.String())
	}
}

func TestNilTextStringIsEmpty(t *testing.T) {
	t.Parallel()

	var txt *Text
	if got := txt.String(); got != "" {
		t.Fatalf("String() = %q, want empty", got)
	}
}

func TestLastKnownSnapshot(t *testing.T) {
	t.Parallel()

	lk := NewLastKnown()
	if got := lk.Snapshot(); got != (Values{}) {
		t.Fatalf("fresh snapshot = %+v, want zero", got)
	}
	lk.Location.Set("Paris")
	lk.Conditions.Set("Cloudy")
	lk.Temperature.Set("15C")
	want := Values{Location: "Paris", Conditions: "Cloudy", Temperature: "15C"}
	if got := lk.Snapshot(); got != want {
		t.Fatalf("snapshot = %+v, want %+v", got, want)
	}
}

func TestTextSet_KeepsInvalidBytes(t *testing.T) {
	t.Parallel()

	txt := NewText(strings.Repeat("\xff", 40))
	if txt.Len() != 31 {
		t.Fatalf("Len() = %d, want 31", txt.Len())
	}
}

func TestTextSet_DropsOnlySplitRune(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "three byte rune cut after two", in: strings.Repeat("x", 29) + "€", want: strings.Repeat("x", 29)},
		{name: "four byte rune cut after three", in: strings.Repeat("x", 28) + "😀", want: strings.Repeat("x", 28)},
		{name: "rune ending at the cut", in: strings.Repeat("x", 28) + "€" + "y", want: strings.Repeat("x", 28) + "€"},
		{name: "invalid byte before the cut", in: strings.Repeat("x", 30) + "\xffzz", want: strings.Repeat("x", 30) + "\xff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewText(tt.in).String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestText_ConcurrentSetAndRead(t *testing.T) {
	t.Parallel()

	txt := &Text{}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if i%2 == 0 {
				txt.Set("Paris")
			} else {
				txt.Set("Reykjavik")
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if got := txt.String(); got != "" && got != "Paris" && got != "Reykjavik" {
				t.Errorf("torn read %q", got)
				return
			}
			_ = txt.Len()
		}
	}()
	wg.Wait()
}
