package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRewriteDayShortcutArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"planner"},
			want: []string{"planner"},
		},
		{
			name: "day and text",
			in:   []string{"planner", "wed", "Dentist", "at", "3pm"},
			want: []string{"planner", "add", "wed", "Dentist", "at", "3pm"},
		},
		{
			name: "day alone is not rewritten",
			in:   []string{"planner", "--pretty", "wed"},
			want: []string{"planner", "--pretty", "wed"},
		},
		{
			name: "after value flag with negative value",
			in:   []string{"planner", "--week", "-1", "fri", "Retro"},
			want: []string{"planner", "--week", "-1", "add", "fri", "Retro"},
		},
		{
			name: "after equals flag",
			in:   []string{"planner", "--format=markdown", "mon", "Gym"},
			want: []string{"planner", "--format=markdown", "add", "mon", "Gym"},
		},
		{
			name: "after double dash",
			in:   []string{"planner", "--", "sun", "Rest"},
			want: []string{"planner", "--", "add", "sun", "Rest"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"planner", "add", "mon", "Gym"},
			want: []string{"planner", "add", "mon", "Gym"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"planner", "wat", "now"},
			want: []string{"planner", "wat", "now"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDayShortcutArgs(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("rewriteDayShortcutArgs (-want +got):\n%s", diff)
			}
		})
	}
}
