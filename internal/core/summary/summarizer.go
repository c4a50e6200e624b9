package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/persona/internal/config"
	"github.com/agenthands/persona/internal/core/common"
	"github.com/agenthands/persona/internal/core/model"
	"github.com/agenthands/persona/internal/llm"
	"github.com/agenthands/persona/internal/platform/logger"
)

// ChunkSize is how many activity items are condensed in one model call.
const ChunkSize = 20

const excerptRunes = 280

const activityPrompt = `Summarize what the following Reddit posts and comments reveal about their author's interests, tone and habits in two or three sentences. Respond with a JSON object: {"summary": "..."}.

{items}`

type narrative struct {
	Summary string `json:"summary"`
}

// Summarizer writes the persona narrative that is indexed as its own fragment.
type Summarizer struct {
	LLM    llm.LLMClient
	Prompt string
	log    *logger.Logger
}

func NewSummarizer(llmClient llm.LLMClient, prompt string, log *logger.Logger) *Summarizer {
	if strings.TrimSpace(prompt) == "" {
		prompt = config.DefaultNarrativePrompt
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Summarizer{LLM: llmClient, Prompt: prompt, log: log}
}

// Narrate summarizes the persona's scores, communities and activity.
func (s *Summarizer) Narrate(ctx context.Context, p model.PersonaRecord) (string, error) {
	activity, err := s.SummarizeActivity(ctx, activityItems(p.Records))
	if err != nil {
		return "", err
	}

	prompt := common.Fill(s.Prompt, map[string]string{"persona": Describe(p, activity)})
	response, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate narrative: %w", err)
	}
	return unwrap(response), nil
}

// SummarizeActivity condenses items recursively: small lists are returned as-is,
// larger ones are summarized chunk by chunk and the partial summaries reduced again.
func (s *Summarizer) SummarizeActivity(ctx context.Context, items []string) (string, error) {
	if len(items) == 0 {
		return "No posts or comments.", nil
	}
	if len(items) <= ChunkSize {
		return bulletList(items), nil
	}

	var partials []string
	for i := 0; i < len(items); i += ChunkSize {
		end := i + ChunkSize
		if end > len(items) {
			end = len(items)
		}
		prompt := common.Fill(activityPrompt, map[string]string{"items": bulletList(items[i:end])})
		response, err := s.LLM.Generate(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			s.log.Warn("activity chunk summary failed", "chunk", i/ChunkSize, "error", err)
			continue
		}
		partials = append(partials, unwrap(response))
	}
	if len(partials) == 0 {
		return "", fmt.Errorf("failed to summarize activity: every chunk failed")
	}
	if len(partials) == 1 {
		return partials[0], nil
	}

	parts := make([]string, len(partials))
	for i, p := range partials {
		parts[i] = fmt.Sprintf("Part %d: %s", i+1, p)
	}
	return s.SummarizeActivity(ctx, parts)
}

// Describe renders the structured persona as prompt input.
func Describe(p model.PersonaRecord, activity string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User: u/%s\n", p.UserID)
	fmt.Fprintf(&b, "MBTI type: %s\n", p.MBTIType)
	b.WriteString("Trait scores (-1 to 1):\n")
	for _, a := range model.TraitAxes() {
		s := p.Traits[a]
		if !s.Determined {
			fmt.Fprintf(&b, "- %s: undetermined\n", a)
			continue
		}
		fmt.Fprintf(&b, "- %s: %+.2f\n", a, s.Value)
	}
	if len(p.Communities) > 0 {
		b.WriteString("Most active communities:\n")
		for i, c := range p.Communities {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "- r/%s: %d interactions, mostly %s\n", c.Community, c.InteractionCount, c.Dominant)
		}
	}
	b.WriteString("Activity:\n")
	b.WriteString(activity)
	return b.String()
}

func activityItems(records []model.ActivityRecord) []string {
	items := make([]string, len(records))
	for i, r := range records {
		items[i] = fmt.Sprintf("[r/%s] %s", r.Community, common.Truncate(strings.Join(strings.Fields(r.Body), " "), excerptRunes))
	}
	return items
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteByte('\n')
	}
	return b.String()
}

// unwrap accepts either {"summary": "..."} or plain text.
func unwrap(response string) string {
	if result, err := common.ParseJSON[narrative](response); err == nil && result.Summary != "" {
		return strings.TrimSpace(result.Summary)
	}
	return strings.TrimSpace(response)
}
