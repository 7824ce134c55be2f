package delay

import (
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for capacity=0")
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected error for capacity=-1")
	}
}

func TestNewDefaults(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	if d.Cap() != 16 || d.Len() != 16 || d.Pos() != 0 {
		t.Fatalf("got cap=%d len=%d pos=%d", d.Cap(), d.Len(), d.Pos())
	}
}

func TestTapReturnsSampleFromOnePeriodAgo(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := range 4 {
		if got := d.Tap(); got != 0 {
			t.Fatalf("tap %d before fill: got %v want 0", i, got)
		}
		d.Push(float64(i + 1))
	}

	for i := range 8 {
		want := float64(i + 1)
		if got := d.Tap(); got != want {
			t.Fatalf("tap %d: got %v want %v", i, got, want)
		}
		d.Push(float64(i + 5))
	}
}

func TestSetLengthWrapsAtActiveLength(t *testing.T) {
	d, err := New(10)
	if err != nil {
		t.Fatal(err)
	}

	d.SetLength(3)

	for i := range 7 {
		d.Push(float64(i))
	}

	if d.Pos() != 1 {
		t.Fatalf("pos: got %d want 1", d.Pos())
	}
	// Slot 1 was last written by push #4.
	if got := d.Tap(); got != 4 {
		t.Fatalf("tap: got %v want 4", got)
	}
}

func TestSetLengthClamps(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	d.SetLength(0)
	if d.Len() != 1 {
		t.Fatalf("len after SetLength(0): %d", d.Len())
	}

	d.SetLength(100)
	if d.Len() != 8 {
		t.Fatalf("len after SetLength(100): %d", d.Len())
	}
}

func TestSetLengthShorterWrapsIndexAndKeepsHistory(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := range 6 {
		d.Push(float64(i + 1))
	}

	d.SetLength(4)
	if d.Pos() != 0 {
		t.Fatalf("pos after shrinking: got %d want 0", d.Pos())
	}
	if got := d.Tap(); got != 1 {
		t.Fatalf("history lost: got %v want 1", got)
	}
}

func TestSetLengthLongerReplaysStaleRegion(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := range 8 {
		d.Push(float64(i + 1))
	}

	d.SetLength(4)
	for range 4 {
		d.Push(0)
	}

	d.SetLength(8)
	for range 4 {
		d.Push(0)
	}

	// Slot 4 was never touched while the line was short.
	if got := d.Tap(); got != 5 {
		t.Fatalf("slot 4: got %v want 5", got)
	}
}

func TestPeek(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	d.SetLength(4)
	for i := range 5 {
		d.Push(float64(i + 1))
	}

	// Slots: [5 2 3 4], pos=1.
	if got := d.Peek(0); got != d.Tap() {
		t.Fatalf("Peek(0)=%v Tap=%v", got, d.Tap())
	}
	if got := d.Peek(1); got != 3 {
		t.Fatalf("Peek(1)=%v want 3", got)
	}
	if got := d.Peek(3); got != 5 {
		t.Fatalf("Peek(3)=%v want 5", got)
	}
	if got := d.Peek(-1); got != 5 {
		t.Fatalf("Peek(-1)=%v want 5", got)
	}
}

func TestReset(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	d.SetLength(3)
	d.Push(1)
	d.Push(2)
	d.Reset()

	if d.Pos() != 0 || d.Len() != 3 {
		t.Fatalf("after reset pos=%d len=%d", d.Pos(), d.Len())
	}
	for i := range 4 {
		if got := d.Tap(); got != 0 {
			t.Fatalf("after reset slot %d: got %v want 0", i, got)
		}
		d.Push(0)
	}
}

func BenchmarkTapPush(b *testing.B) {
	d, _ := New(24000)
	d.SetLength(12000)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.Push(d.Tap()*0.5 + 0.1)
	}
}
