package arcard

import (
	"testing"
	"time"
)

func TestDoubleActionDetector(t *testing.T) {
	ms := func(n int) time.Time { return t0.Add(time.Duration(n) * time.Millisecond) }

	tests := []struct {
		name string
		taps []time.Time
		want []bool
	}{
		{"single", []time.Time{ms(0)}, []bool{false}},
		{"quick pair", []time.Time{ms(0), ms(200)}, []bool{false, true}},
		{"exactly at window", []time.Time{ms(0), ms(300)}, []bool{false, true}},
		{"too slow", []time.Time{ms(0), ms(301)}, []bool{false, false}},
		{"slow then quick", []time.Time{ms(0), ms(500), ms(650)}, []bool{false, false, true}},
		{"third tap starts over", []time.Time{ms(0), ms(100), ms(200)}, []bool{false, true, false}},
		{"two pairs", []time.Time{ms(0), ms(100), ms(200), ms(300)}, []bool{false, true, false, true}},
		{"clock went back", []time.Time{ms(500), ms(400)}, []bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDoubleActionDetector(0)
			for i, tap := range tt.taps {
				if got := d.Record(tap); got != tt.want[i] {
					t.Errorf("tap %d: Record = %v, want %v", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestDoubleActionDetectorReset(t *testing.T) {
	d := NewDoubleActionDetector(time.Second)
	d.Record(t0)
	d.Reset()
	if d.Record(t0.Add(10 * time.Millisecond)) {
		t.Error("tap after Reset completed a pair")
	}
}

func TestDoubleActionDetectorCustomWindow(t *testing.T) {
	d := NewDoubleActionDetector(50 * time.Millisecond)
	d.Record(t0)
	if d.Record(t0.Add(80 * time.Millisecond)) {
		t.Error("80ms gap fired with a 50ms window")
	}
}
