package usecase

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"
)

//go:embed knowledge_base.md
var knowledgeBase string

const promptPreamble = "You are SmartRunAI's intelligent assistant. Your role is to help visitors learn " +
	"about Smart Run AI's automation services and guide them toward booking a consultation."

var promptInstructions = []string{
	"Be friendly, professional, and helpful.",
	"Answer questions based ONLY on the knowledge base and website content provided above.",
	"If asked about something not covered above, politely say you don't have that specific information and suggest they contact the team or book a demo for personalized assistance.",
	"DO NOT discuss specific pricing. If asked about cost, respond: \"Pricing is customized based on your specific needs. I'd recommend booking a free consultation where our team can provide a tailored quote based on your requirements.\"",
	"Encourage users to book a demo for personalized advice. Mention they can click the \"Book a Demo\" button or use the link: ?book-demo=true",
	"Keep responses concise but informative (2-4 sentences typically).",
	"Use a warm, conversational tone.",
	"When discussing services, provide relevant examples and use cases.",
	"If users ask how to get started, always guide them to book a free automation audit.",
	"For contact, provide: email info@smartrunai.com or suggest booking a demo.",
}

// ContentProvider supplies the scraped website text, which may be empty.
type ContentProvider interface {
	GetOrRefresh(ctx context.Context) string
}

type PromptBuilder interface {
	Build(ctx context.Context) string
}

var _ PromptBuilder = (*promptBuilder)(nil)

type promptBuilder struct {
	content ContentProvider
	tokens  *tokenCounter
	log     *zerolog.Logger
}

func NewPromptBuilder(content ContentProvider, log *zerolog.Logger) *promptBuilder {
	return &promptBuilder{content: content, tokens: &tokenCounter{}, log: log}
}

// Build never fails. With no scraped content the prompt is the static
// knowledge base and instructions alone.
func (p *promptBuilder) Build(ctx context.Context) string {
	var live string
	if p.content != nil {
		live = p.content.GetOrRefresh(ctx)
	}
	prompt := renderPrompt(live)

	if e := p.log.Debug(); e.Enabled() {
		e.Int("prompt_chars", len(prompt)).
			Int("prompt_tokens", p.tokens.Count(prompt)).
			Bool("live_content", live != "").
			Msg("system prompt assembled")
	}
	return prompt
}

func renderPrompt(live string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nKNOWLEDGE BASE:\n")
	b.WriteString(strings.TrimSpace(knowledgeBase))
	if live = strings.TrimSpace(live); live != "" {
		b.WriteString("\n\nLIVE WEBSITE CONTENT (most recent snapshot of smartrunai.com):\n")
		b.WriteString(live)
	}
	b.WriteString("\n\nIMPORTANT INSTRUCTIONS:\n")
	for i, line := range promptInstructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}
	b.WriteString("\nRemember: Your goal is to be helpful and encourage visitors to take the next step with SmartRunAI.")
	return b.String()
}

// tokenCounter estimates prompt size with the cl100k_base encoding. If the
// encoding cannot be loaded it falls back to a quarter of the rune count.
type tokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

func (t *tokenCounter) Count(s string) int {
	t.once.Do(func() {
		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			t.enc = enc
		}
	})
	if t.enc == nil {
		return (utf8.RuneCountInString(s) + 3) / 4
	}
	return len(t.enc.Encode(s, nil, nil))
}
