package filter

import (
	"context"
	"testing"

	"github.com/rushteam/ratekit/core"
)

func TestExpression_ShouldFilter(t *testing.T) {
	ctx := context.Background()
	f, err := NewExpression("value >= 3.0")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}

	tests := []struct {
		rating core.Rating
		want   bool // true 表示被过滤
	}{
		{core.Rating{UserID: 1, ItemID: 1, Value: 4.0}, false},
		{core.Rating{UserID: 1, ItemID: 2, Value: 3.0}, false},
		{core.Rating{UserID: 1, ItemID: 3, Value: 2.9}, true},
	}
	for _, tt := range tests {
		got, err := f.ShouldFilter(ctx, tt.rating)
		if err != nil {
			t.Fatalf("ShouldFilter(%+v): %v", tt.rating, err)
		}
		if got != tt.want {
			t.Errorf("ShouldFilter(%+v) = %v, want %v", tt.rating, got, tt.want)
		}
	}
}

func TestExpression_EmptyKeepsAll(t *testing.T) {
	f, err := NewExpression("")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	got, err := f.ShouldFilter(context.Background(), core.Rating{Value: -1})
	if err != nil || got {
		t.Errorf("empty expression ShouldFilter = %v, %v; want false, nil", got, err)
	}
}

func TestFunc_Filter(t *testing.T) {
	f := &Func{Fn: func(r core.Rating) bool { return r.UserID == 0 }}
	got, _ := f.ShouldFilter(context.Background(), core.Rating{UserID: 0})
	if !got {
		t.Error("Func filter should drop user 0")
	}
	got, _ = f.ShouldFilter(context.Background(), core.Rating{UserID: 1})
	if got {
		t.Error("Func filter should keep user 1")
	}
}
