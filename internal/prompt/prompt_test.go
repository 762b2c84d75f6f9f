package prompt

import (
	"testing"

	"github.com/ent0n29/genie/internal/history"
)

func TestAssembleEmptyHistory(t *testing.T) {
	got := Assemble("persona", nil, "Hello")
	if len(got) != 2 {
		t.Fatalf("Assemble() returned %d messages, want 2", len(got))
	}
	if got[0].Role != RoleSystem || got[0].Content != "persona" {
		t.Fatalf("messages[0] = %+v, want system persona", got[0])
	}
	if got[1].Role != RoleUser || got[1].Content != "Hello" {
		t.Fatalf("messages[1] = %+v, want user(Hello)", got[1])
	}
}

func TestAssembleReplaysHistoryInOrder(t *testing.T) {
	interactions := []history.Interaction{
		{Prompt: "A", Response: "B"},
	}
	got := Assemble("persona", interactions, "C")

	want := []Message{
		{Role: RoleSystem, Content: "persona"},
		{Role: RoleUser, Content: "A"},
		{Role: RoleAssistant, Content: "B"},
		{Role: RoleUser, Content: "C"},
	}
	if len(got) != len(want) {
		t.Fatalf("Assemble() returned %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("messages[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAssembleLengthAndAlternation(t *testing.T) {
	for n := 0; n <= 5; n++ {
		interactions := make([]history.Interaction, n)
		for i := range interactions {
			interactions[i] = history.Interaction{Prompt: "p", Response: "r"}
		}
		got := Assemble("persona", interactions, "new")
		if len(got) != 2*n+2 {
			t.Fatalf("n=%d: len = %d, want %d", n, len(got), 2*n+2)
		}
		for i, m := range got[1:] {
			wantRole := RoleUser
			if i%2 == 1 {
				wantRole = RoleAssistant
			}
			if m.Role != wantRole {
				t.Fatalf("n=%d: messages[%d].Role = %q, want %q", n, i+1, m.Role, wantRole)
			}
		}
	}
}
