package championship

import "testing"

func TestRank(t *testing.T) {
	tests := []struct {
		name   string
		scores []Score
		want   []Ranked
	}{
		{
			name:   "empty",
			scores: nil,
			want:   []Ranked{},
		},
		{
			name:   "gap after tie",
			scores: []Score{{"a", 10}, {"b", 10}, {"c", 20}},
			want:   []Ranked{{"a", 1}, {"b", 1}, {"c", 3}},
		},
		{
			name:   "unsorted input",
			scores: []Score{{"x", 12}, {"y", 3}, {"z", 9}},
			want:   []Ranked{{"y", 1}, {"z", 2}, {"x", 3}},
		},
		{
			name: "several tie groups",
			scores: []Score{
				{"a", 9}, {"b", 3}, {"c", 9}, {"d", 3}, {"e", 12}, {"f", 5}, {"g", 9},
			},
			want: []Ranked{
				{"b", 1}, {"d", 1}, {"f", 3}, {"a", 4}, {"c", 4}, {"g", 4}, {"e", 7},
			},
		},
		{
			name:   "fractional values",
			scores: []Score{{"a", 1.5}, {"b", 1.25}, {"c", 1.5}},
			want:   []Ranked{{"b", 1}, {"a", 2}, {"c", 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(tt.scores)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d ranks, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("rank[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRank_DoesNotModifyInput(t *testing.T) {
	in := []Score{{"c", 3}, {"a", 1}, {"b", 2}}
	Rank(in)
	if in[0].Key != "c" || in[1].Key != "a" || in[2].Key != "b" {
		t.Errorf("input reordered: %+v", in)
	}
}
