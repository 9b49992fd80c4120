/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ListGenerator resolves a free-text category into a ranked list of ten
// names. The upstream call is attempted at most once per room creation and
// is bounded by the configured timeout; any failure falls back to static
// data, so room creation never fails on this dependency.
type ListGenerator struct {
	url     string
	key     string
	model   string
	timeout time.Duration
	client  *http.Client
}

func newListGenerator(cfg *Config) *ListGenerator {
	return &ListGenerator{
		url:     strings.TrimSuffix(cfg.openaiURL, "/"),
		key:     cfg.openaiKey,
		model:   cfg.openaiModel,
		timeout: cfg.listTimeout,
		client:  &http.Client{},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// generate always returns exactly ten entries.
func (g *ListGenerator) generate(ctx context.Context, cfg *Config, category string) []string {
	if g.key != "" {
		items, err := g.fetch(ctx, category)
		if err == nil {
			return items
		}
		logf(cfg, "LISTS: Upstream generation failed for %q: %v", category, err)
	}

	listFallbacks.Inc()

	return fallbackList(category)
}

func (g *ListGenerator) fetch(ctx context.Context, category string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := fmt.Sprintf("Give me a ranked list of the top 10 %s, from #1 to #10, without any extra commentary. Output each item on a new line in plain text format.", category)

	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful assistant that only returns lists in plain text format."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.key)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}

	items := parseList(parsed.Choices[0].Message.Content)
	if len(items) < listSize {
		return nil, fmt.Errorf("only %d usable lines", len(items))
	}

	return items[:listSize], nil
}

var numbering = regexp.MustCompile(`^\d+\.?\s*`)

// parseList splits generated text into entries, stripping any leading
// "1." style numbering and blank lines.
func parseList(text string) []string {
	lines := strings.Split(text, "\n")

	items := make([]string, 0, len(lines))
	for _, line := range lines {
		entry := strings.TrimSpace(numbering.ReplaceAllString(strings.TrimSpace(line), ""))
		if entry == "" {
			continue
		}
		items = append(items, entry)
	}

	return items
}

// Known categories used when upstream generation is unavailable.
var fallbackLists = map[string][]string{
	"richest people":    {"Elon Musk", "Bernard Arnault", "Jeff Bezos", "Bill Gates", "Warren Buffett", "Larry Page", "Sergey Brin", "Larry Ellison", "Steve Ballmer", "Michael Bloomberg"},
	"popular fruits":    {"Apple", "Banana", "Orange", "Strawberry", "Grape", "Mango", "Pineapple", "Watermelon", "Cherry", "Peach"},
	"largest countries": {"Russia", "Canada", "United States", "China", "Brazil", "Australia", "India", "Argentina", "Kazakhstan", "Algeria"},
}

func fallbackList(category string) []string {
	lowered := strings.ToLower(category)
	for key, items := range fallbackLists {
		if strings.Contains(lowered, key) {
			return items
		}
	}

	items := make([]string, 0, listSize)
	for i := 1; i <= listSize; i++ {
		items = append(items, fmt.Sprintf("Item %d for %s", i, category))
	}
	return items
}
