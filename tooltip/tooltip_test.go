package tooltip

import (
	"reflect"
	"testing"

	"pipeworks/server/catalog"
	"pipeworks/server/internal/fluid"
)

func TestLinesBlankRendersNothing(t *testing.T) {
	if got := Lines(fluid.Blank, 0, fluid.CapacityDefault, ShowAmount, nil); got != nil {
		t.Fatalf("blank tooltip = %v", got)
	}
}

func TestLinesModes(t *testing.T) {
	water := fluid.Of("water")
	namer := catalog.Default().MustIndex().DisplayName

	cases := []struct {
		name     string
		mode     Mode
		amount   int64
		capacity int64
		want     []string
	}{
		{
			name:   "amount in droplets",
			mode:   ShowAmount,
			amount: fluid.Bucket, capacity: fluid.CapacityDefault,
			want: []string{"Water", "81,000 droplets"},
		},
		{
			name:   "amount and capacity in droplets",
			mode:   ShowAmountAndCapacity,
			amount: fluid.Bucket, capacity: fluid.CapacityDefault,
			want: []string{"Water", "81,000 / 810,000 droplets"},
		},
		{
			name:   "amount in millibuckets",
			mode:   ShowAmountMb,
			amount: fluid.Bucket / 2, capacity: fluid.CapacityDefault,
			want: []string{"Water", "500 mB"},
		},
		{
			name:   "amount and capacity in millibuckets",
			mode:   ShowAmountAndCapacityMb,
			amount: 3 * fluid.Bucket, capacity: fluid.CapacityLarge,
			want: []string{"Water", "3,000 mB / 50,000 mB"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Lines(water, tc.amount, tc.capacity, tc.mode, namer)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Lines() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLinesFallsBackToRawID(t *testing.T) {
	oil := fluid.Of("oil")
	got := Lines(oil, fluid.Bucket, fluid.CapacityDefault, ShowAmountMb, nil)
	want := []string{"oil", "1,000 mB"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Lines() = %v, want %v", got, want)
	}
}
