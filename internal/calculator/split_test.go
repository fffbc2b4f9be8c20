package calculator

import (
	"errors"
	"testing"
)

func TestSplitEvenly(t *testing.T) {
	tests := []struct {
		name        string
		totalCents  int64
		memberCount int
		want        []int64
		wantErr     error
	}{
		{
			name:        "even three-way split",
			totalCents:  1800,
			memberCount: 3,
			want:        []int64{600, 600, 600},
		},
		{
			name:        "remainder goes to first member",
			totalCents:  1801,
			memberCount: 3,
			want:        []int64{601, 600, 600},
		},
		{
			name:        "largest remainder",
			totalCents:  1802,
			memberCount: 3,
			want:        []int64{602, 600, 600},
		},
		{
			name:        "single member takes everything",
			totalCents:  999,
			memberCount: 1,
			want:        []int64{999},
		},
		{
			name:        "one cent each",
			totalCents:  4,
			memberCount: 4,
			want:        []int64{1, 1, 1, 1},
		},
		{
			name:        "no members",
			totalCents:  100,
			memberCount: 0,
			wantErr:     ErrNoMembers,
		},
		{
			name:        "zero total",
			totalCents:  0,
			memberCount: 2,
			wantErr:     ErrNonPositiveTotal,
		},
		{
			name:        "negative total",
			totalCents:  -5,
			memberCount: 2,
			wantErr:     ErrNonPositiveTotal,
		},
		{
			name:        "fewer cents than members",
			totalCents:  2,
			memberCount: 3,
			wantErr:     ErrAmountTooSmall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitEvenly(tt.totalCents, tt.memberCount)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SplitEvenly() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitEvenly() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("SplitEvenly() len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("share[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitEvenlySumsToTotal(t *testing.T) {
	for members := 1; members <= 12; members++ {
		for total := int64(members); total < int64(members)+250; total++ {
			shares, err := SplitEvenly(total, members)
			if err != nil {
				t.Fatalf("SplitEvenly(%d, %d) error: %v", total, members, err)
			}

			var sum int64
			for i, s := range shares {
				if s <= 0 {
					t.Fatalf("SplitEvenly(%d, %d): share[%d] = %d is not positive", total, members, i, s)
				}
				if i > 0 && s != shares[1] {
					t.Fatalf("SplitEvenly(%d, %d): only the first share may differ", total, members)
				}
				sum += s
			}
			if sum != total {
				t.Fatalf("SplitEvenly(%d, %d) sums to %d", total, members, sum)
			}
		}
	}
}
