// Package llm defines the provider-neutral contract for text generation: a stateless
// prompt-in, reply-out client, a tagged reply type and an error-kind taxonomy.
package llm

import (
	"context"
	"strings"
)

// Placeholder is returned by Reply.Content when the model produced nothing usable.
const Placeholder = "Sorry, couldn't generate a reply."

type ReplyKind int

const (
	KindEmpty ReplyKind = iota
	KindPlainText
	KindStructured
)

func (k ReplyKind) String() string {
	switch k {
	case KindPlainText:
		return "plain_text"
	case KindStructured:
		return "structured"
	default:
		return "empty"
	}
}

// Block is one element of a structured model output.
type Block struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Reply is the tagged result of a generation call.
type Reply struct {
	Kind   ReplyKind
	Plain  string
	Blocks []Block
}

func PlainText(s string) Reply { return Reply{Kind: KindPlainText, Plain: s} }

func Structured(blocks ...Block) Reply { return Reply{Kind: KindStructured, Blocks: blocks} }

// Content resolves the reply to display text: plain text, else the first structured
// block, else Placeholder.
func (r Reply) Content() string {
	switch r.Kind {
	case KindPlainText:
		if strings.TrimSpace(r.Plain) != "" {
			return r.Plain
		}
	case KindStructured:
		if len(r.Blocks) > 0 && strings.TrimSpace(r.Blocks[0].Content) != "" {
			return r.Blocks[0].Content
		}
	case KindEmpty:
	}
	return Placeholder
}

// DeltaFunc receives incremental output. Returning an error aborts the stream.
type DeltaFunc func(delta string) error

// Client generates a reply for a fully self-contained prompt. Implementations hold no
// conversation state between calls.
type Client interface {
	Provider() string
	Generate(ctx context.Context, prompt string) (Reply, error)
	// Stream forwards provider increments to onDelta and returns the assembled reply.
	Stream(ctx context.Context, prompt string, onDelta DeltaFunc) (Reply, error)
}
