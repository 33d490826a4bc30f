package mso

import "testing"

func TestExtractChannelBlocks_MultipleChannels(t *testing.T) {
	content := `Preamble text

Channel: "Left"
FL1: Parametric EQ
Parameter "Center freq (Hz)" = 100
End Channel: "Left"

Channel: "Right"
FL2: Parametric EQ
Parameter "Center freq (Hz)" = 200
End Channel: "Right"
`
	blocks := ExtractChannelBlocks(content)

	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if got := blocks["Left"]; got != "FL1: Parametric EQ\nParameter \"Center freq (Hz)\" = 100" {
		t.Errorf("Left block: got %q", got)
	}
	if got := blocks["Right"]; got != "FL2: Parametric EQ\nParameter \"Center freq (Hz)\" = 200" {
		t.Errorf("Right block: got %q", got)
	}
}

func TestExtractChannelBlocks_EndNameMustMatch(t *testing.T) {
	content := `Channel: "Left"
FL1: Parametric EQ
End Channel: "Right"

Channel: "Center"
FL2: Parametric EQ
End Channel: "Center"
`
	blocks := ExtractChannelBlocks(content)

	if _, ok := blocks["Left"]; ok {
		t.Error("block with mismatched end name should not be extracted")
	}
	if _, ok := blocks["Center"]; !ok {
		t.Error("well-formed block after a broken one should still be extracted")
	}
}

func TestExtractChannelBlocks_DuplicateNameLastWins(t *testing.T) {
	content := `Channel: "Sub"
first body
End Channel: "Sub"
Channel: "Sub"
second body
End Channel: "Sub"
`
	blocks := ExtractChannelBlocks(content)

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks["Sub"] != "second body" {
		t.Errorf("expected later block to win, got %q", blocks["Sub"])
	}
}

func TestExtractChannelBlocks_Empty(t *testing.T) {
	blocks := ExtractChannelBlocks("no channel markers here")
	if len(blocks) != 0 {
		t.Errorf("expected empty map, got %d entries", len(blocks))
	}
}

func TestExtractChannelBlocks_TrimsWhitespace(t *testing.T) {
	content := "Channel: \"LFE\"\n\n\n   body line   \n\n\nEnd Channel: \"LFE\""
	blocks := ExtractChannelBlocks(content)
	if blocks["LFE"] != "body line" {
		t.Errorf("expected trimmed body, got %q", blocks["LFE"])
	}
}

func TestExtractSharedBlock(t *testing.T) {
	content := `Channel: "Left"
FL1: Parametric EQ
End Channel: "Left"

Shared sub channel:
FL9: All-Pass Second-Order
Parameter "All-pass Q" = 0.5
End shared sub channel
`
	block, ok := ExtractSharedBlock(content)
	if !ok {
		t.Fatal("expected shared block to be found")
	}
	want := "FL9: All-Pass Second-Order\nParameter \"All-pass Q\" = 0.5"
	if block != want {
		t.Errorf("expected %q, got %q", want, block)
	}
}

func TestExtractSharedBlock_MissingMarkers(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"no markers", "just text"},
		{"start only", "Shared sub channel:\nFL1: Parametric EQ"},
		{"end only", "FL1: Parametric EQ\nEnd shared sub channel"},
		{"end before start", "End shared sub channel\nShared sub channel:"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := ExtractSharedBlock(tc.content); ok {
				t.Errorf("expected no shared block for %q", tc.content)
			}
		})
	}
}

func TestExtractChannelBlocks_IgnoresSharedBlock(t *testing.T) {
	content := `Shared sub channel:
shared body
End shared sub channel

Channel: "Left"
left body
End Channel: "Left"
`
	blocks := ExtractChannelBlocks(content)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 channel block, got %d", len(blocks))
	}
	if blocks["Left"] != "left body" {
		t.Errorf("got %q", blocks["Left"])
	}
}
