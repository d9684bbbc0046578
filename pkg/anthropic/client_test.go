package anthropic

import "testing"

func TestMessageResponse_Text(t *testing.T) {
	r := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "hello "},
		{Type: "tool_use", Text: "ignored"},
		{Type: "text", Text: "world"},
	}}
	if got := r.Text(); got != "hello world" {
		t.Fatalf("Text() = %q", got)
	}
}
