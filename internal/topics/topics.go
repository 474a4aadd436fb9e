// Package topics suggests conversation starters for the weekly pairing
// announcement: it pulls Wikipedia's "On this day" pages for the past week
// and asks ChatGPT to distill them into five lighthearted topics.
package topics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	userAgent = "RandomCoffeeBot/1.0 (+https://github.com/systemdevart/random-coffee)"
	// Wikipedia pages are large; cap what goes into the prompt.
	maxPageChars = 15000
	topicCount   = 5

	extractSystemPrompt = "You are a fun, upbeat assistant that finds entertaining and amusing facts " +
		"from Wikipedia. You love pop culture, quirky holidays, celebrity trivia, and weird " +
		"historical fun facts. You avoid serious, depressing, or heavy topics."
	selectSystemPrompt = "You are a fun, cheerful assistant helping colleagues find entertaining " +
		"conversation topics for their weekly coffee chat. Keep everything light and fun!"
)

// ErrNoEvents means no Wikipedia page yielded any usable material.
var ErrNoEvents = errors.New("no events collected for the past week")

type Generator struct {
	ai   *openai.Client
	http *http.Client
	log  *zap.Logger
	now  func() time.Time
}

func New(apiKey string, log *zap.Logger) *Generator {
	return &Generator{
		ai:   openai.NewClient(apiKey),
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log,
		now:  time.Now,
	}
}

// Generate returns up to five conversation topics drawn from the past
// week's historical events. Per-day failures are logged and skipped; only a
// fully empty harvest is an error.
func (g *Generator) Generate(ctx context.Context) ([]string, error) {
	var events []string
	for _, d := range pastWeekDates(g.now()) {
		page, err := g.fetchWikipediaPage(ctx, d.month, d.day)
		if err != nil {
			g.log.Warn("wikipedia fetch failed",
				zap.String("month", d.month), zap.Int("day", d.day), zap.Error(err))
			continue
		}
		dayEvents, err := g.extractEvents(ctx, page, d.month, d.day)
		if err != nil {
			g.log.Warn("event extraction failed",
				zap.String("month", d.month), zap.Int("day", d.day), zap.Error(err))
			continue
		}
		events = append(events, dayEvents...)
	}
	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	topics, err := g.selectTopics(ctx, events)
	if err != nil {
		return nil, err
	}
	g.log.Info("conversation topics generated", zap.Int("count", len(topics)))
	return topics, nil
}

type monthDay struct {
	month string
	day   int
}

// pastWeekDates returns the 7 days ending at ref (inclusive), so the same
// weekday one week earlier is excluded.
func pastWeekDates(ref time.Time) []monthDay {
	dates := make([]monthDay, 0, 7)
	for i := 0; i < 7; i++ {
		d := ref.AddDate(0, 0, -i)
		dates = append(dates, monthDay{month: d.Month().String(), day: d.Day()})
	}
	return dates
}

// fetchWikipediaPage downloads the "On this day" page, e.g.
// https://en.wikipedia.org/wiki/March_3.
func (g *Generator) fetchWikipediaPage(ctx context.Context, month string, day int) (string, error) {
	url := fmt.Sprintf("https://en.wikipedia.org/wiki/%s_%d", month, day)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia %s_%d: status %d", month, day, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	page := string(body)
	if len(page) > maxPageChars {
		page = page[:maxPageChars]
	}
	return page, nil
}

// extractEvents asks the model for up to five fun items from one day's page.
func (g *Generator) extractEvents(ctx context.Context, page, month string, day int) ([]string, error) {
	prompt := fmt.Sprintf(
		"Analyze this Wikipedia page for %s %d and extract exactly %d FUN and ENTERTAINING items: "+
			"quirky holidays, funny or surprising historical events, celebrity birthdays, pop culture "+
			"moments, weird records. AVOID wars, tragedies, and political events. Keep each item to "+
			"1-2 sentences with a playful tone, great for casual coffee conversation. "+
			"Return exactly %d items, one per line, without numbering or bullet points.\n\n"+
			"Wikipedia page content:\n%s",
		month, day, topicCount, topicCount, page,
	)
	return g.chat(ctx, extractSystemPrompt, prompt, 1000, 0.8)
}

// selectTopics asks the model to pick the best five topics overall.
func (g *Generator) selectTopics(ctx context.Context, events []string) ([]string, error) {
	var b strings.Builder
	for _, e := range events {
		b.WriteString("- ")
		b.WriteString(e)
		b.WriteByte('\n')
	}
	prompt := fmt.Sprintf(
		"From this list of fun facts and entertaining events from the past week, select the %d MOST "+
			"FUN topics for a casual coffee conversation between colleagues. Prefer topics that spark "+
			"fun discussions or sharing personal stories; mix celebrity birthdays, quirky holidays, pop "+
			"culture, and trivia; avoid anything serious, political, or depressing.\n\n"+
			"Available topics:\n%s\n"+
			"Return exactly %d topics as playful conversation starters, each on its own line, "+
			"without numbering or bullet points.",
		topicCount, b.String(), topicCount,
	)
	return g.chat(ctx, selectSystemPrompt, prompt, 500, 0.9)
}

// chat performs one completion call and splits the reply into lines.
func (g *Generator) chat(ctx context.Context, system, user string, maxTokens int, temperature float32) ([]string, error) {
	resp, err := g.ai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion: empty response")
	}

	var lines []string
	for _, line := range strings.Split(resp.Choices[0].Message.Content, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > topicCount {
		lines = lines[:topicCount]
	}
	return lines, nil
}

var boldMarkdown = regexp.MustCompile(`\*\*(.+?)\*\*`)

// convertMarkdownToSlack rewrites **bold** to Slack's *bold*.
func convertMarkdownToSlack(s string) string {
	return boldMarkdown.ReplaceAllString(s, "*$1*")
}

// FormatTopics renders the topics block appended to the announcement.
// An empty topic list renders as "".
func FormatTopics(topics []string) string {
	if len(topics) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n🎉 *Fun Conversation Starters for This Week:* 🎉\n")
	b.WriteString("_Some entertaining things that happened this past week in history..._\n\n")
	for i, t := range topics {
		fmt.Fprintf(&b, "%d. %s\n", i+1, convertMarkdownToSlack(t))
	}
	return b.String()
}
