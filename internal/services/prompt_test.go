package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	types "github.com/yungbote/neurochat-backend/internal/domain"
)

func TestBuildPromptCustomInstruction(t *testing.T) {
	got := BuildPrompt("Be terse.", []*types.Message{{Role: types.RoleUser, Content: "ping"}})
	want := "System: Be terse.\n\nUser: ping"
	if got != want {
		t.Fatalf("want=%q got=%q", want, got)
	}
}

func TestBuildPromptEmptyHistory(t *testing.T) {
	got := BuildPrompt("", nil)
	if !strings.HasPrefix(got, "System: "+DefaultSystemInstruction) {
		t.Fatalf("missing system line: %q", got)
	}
}

func TestChunkRunes(t *testing.T) {
	cases := []struct {
		in   string
		size int
		want []int
	}{
		{in: strings.Repeat("a", 200), size: 80, want: []int{80, 80, 40}},
		{in: strings.Repeat("a", 80), size: 80, want: []int{80}},
		{in: "", size: 80, want: nil},
		{in: strings.Repeat("é", 5), size: 2, want: []int{2, 2, 1}},
	}
	for _, tc := range cases {
		got := ChunkRunes(tc.in, tc.size)
		if len(got) != len(tc.want) {
			t.Fatalf("ChunkRunes(len=%d,%d): want %d chunks got %d", len(tc.in), tc.size, len(tc.want), len(got))
		}
		for i, n := range tc.want {
			if utf8.RuneCountInString(got[i]) != n {
				t.Fatalf("chunk %d: want=%d runes got=%d", i, n, utf8.RuneCountInString(got[i]))
			}
		}
		if strings.Join(got, "") != tc.in {
			t.Fatalf("chunks do not reassemble input")
		}
	}
}
