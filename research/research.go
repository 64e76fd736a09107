// Package research gathers web context for a topic before scripting.
// It never fails: each source degrades independently and a topic with no
// findings still yields a usable stub.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"autotube/config"
	"autotube/types"

	"github.com/vartanbeno/go-reddit/v2/reddit"
)

const (
	defaultInstantAnswerURL = "https://api.duckduckgo.com/"
	defaultNewsRSSURL       = "https://news.google.com/rss/search"
)

// Agent aggregates DuckDuckGo instant answers, Reddit discussion and
// Google News results into one research blob
type Agent struct {
	cfg              config.ResearchConfig
	httpClient       *http.Client
	reddit           *reddit.Client
	instantAnswerURL string
	newsRSSURL       string
}

// New creates an Agent. Reddit search is used when a read client can be
// built; otherwise that source is simply skipped.
func New(cfg config.ResearchConfig) *Agent {
	a := &Agent{
		cfg:              cfg,
		httpClient:       &http.Client{Timeout: 15 * time.Second},
		instantAnswerURL: defaultInstantAnswerURL,
		newsRSSURL:       defaultNewsRSSURL,
	}

	id := os.Getenv("REDDIT_CLIENT_ID")
	secret := os.Getenv("REDDIT_CLIENT_SECRET")
	if id != "" && secret != "" {
		client, err := reddit.NewClient(reddit.Credentials{
			ID:       id,
			Secret:   secret,
			Username: os.Getenv("REDDIT_USERNAME"),
			Password: os.Getenv("REDDIT_PASSWORD"),
		})
		if err != nil {
			log.Printf("[research] reddit client unavailable: %v", err)
		} else {
			a.reddit = client
		}
	} else if client, err := reddit.NewReadonlyClient(); err == nil {
		a.reddit = client
	}

	return a
}

// Run researches a topic. It always returns usable data.
func (a *Agent) Run(ctx context.Context, topic string) *types.ResearchData {
	log.Printf("[research] researching %q...", topic)

	data := &types.ResearchData{Topic: topic}
	data.Summaries = a.instantAnswers(ctx, topic)
	data.Summaries = append(data.Summaries, a.redditThreads(ctx, topic)...)
	data.News = a.newsItems(ctx, topic)
	data.CombinedText = combineText(data, a.cfg.MaxContextChars)

	log.Printf("[research] ✅ %d summaries, %d news items", len(data.Summaries), len(data.News))
	return data
}

// --- DuckDuckGo instant answer API ---

type instantAnswer struct {
	Heading       string `json:"Heading"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (a *Agent) instantAnswers(ctx context.Context, topic string) []types.Summary {
	params := url.Values{}
	params.Set("q", topic)
	params.Set("format", "json")
	params.Set("no_html", "1")

	req, err := http.NewRequestWithContext(ctx, "GET", a.instantAnswerURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		log.Printf("[research] duckduckgo failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		log.Printf("[research] duckduckgo parse failed: %v", err)
		return nil
	}

	var out []types.Summary
	if answer.AbstractText != "" {
		out = append(out, types.Summary{
			Title:   answer.Heading,
			Snippet: answer.AbstractText,
			URL:     answer.AbstractURL,
		})
	}
	for _, rt := range answer.RelatedTopics {
		if rt.Text == "" {
			continue
		}
		out = append(out, types.Summary{Title: rt.Text, Snippet: rt.Text, URL: rt.FirstURL})
		if len(out) >= a.cfg.MaxResults {
			break
		}
	}
	return out
}

// --- Reddit discussion ---

func (a *Agent) redditThreads(ctx context.Context, topic string) []types.Summary {
	if a.reddit == nil {
		return nil
	}

	var out []types.Summary
	for _, sub := range a.cfg.Subreddits {
		posts, _, err := a.reddit.Subreddit.SearchPosts(ctx, topic, sub, &reddit.ListPostSearchOptions{
			ListPostOptions: reddit.ListPostOptions{
				ListOptions: reddit.ListOptions{Limit: 3},
			},
			Sort: "relevance",
		})
		if err != nil {
			log.Printf("[research] reddit r/%s search failed: %v", sub, err)
			continue
		}
		for _, post := range posts {
			snippet := post.Body
			if snippet == "" {
				snippet = post.Title
			}
			out = append(out, types.Summary{
				Title:   post.Title,
				Snippet: snippet,
				URL:     "https://reddit.com" + post.Permalink,
			})
		}
	}
	return out
}

// --- Google News RSS ---

func (a *Agent) newsItems(ctx context.Context, topic string) []types.NewsItem {
	feedURL := fmt.Sprintf("%s?q=%s&hl=en-US&gl=US&ceid=US:en", a.newsRSSURL, url.QueryEscape(topic))

	req, err := http.NewRequestWithContext(ctx, "GET", feedURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; AutoTube/1.0)")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		log.Printf("[research] news rss failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	var items []types.NewsItem
	for _, it := range parseRSSItems(string(body)) {
		items = append(items, types.NewsItem{Title: it.Title, Snippet: it.Title, Date: it.PubDate})
		if len(items) >= a.cfg.MaxNews {
			break
		}
	}
	return items
}

type rssItem struct {
	Title   string
	Link    string
	PubDate string
}

// parseRSSItems is a lightweight RSS parser, enough for Google News feeds
func parseRSSItems(xml string) []rssItem {
	var items []rssItem
	parts := strings.Split(xml, "<item>")
	for _, part := range parts[1:] {
		item := rssItem{
			Title:   extractXMLTag(part, "title"),
			Link:    extractXMLTag(part, "link"),
			PubDate: extractXMLTag(part, "pubDate"),
		}
		if item.Title != "" {
			items = append(items, item)
		}
	}
	return items
}

func extractXMLTag(s, tag string) string {
	open := "<" + tag + ">"
	close := "</" + tag + ">"
	start := strings.Index(s, open)
	if start == -1 {
		return ""
	}
	start += len(open)
	end := strings.Index(s[start:], close)
	if end == -1 {
		return ""
	}
	val := s[start : start+end]
	val = strings.TrimPrefix(val, "<![CDATA[")
	val = strings.TrimSuffix(val, "]]>")
	return strings.TrimSpace(val)
}

// combineText flattens the findings into one prompt-ready blob, capped at
// maxChars. With nothing found it returns a stub so scripting can proceed
// from the topic alone.
func combineText(data *types.ResearchData, maxChars int) string {
	if len(data.Summaries) == 0 && len(data.News) == 0 {
		return fmt.Sprintf("Topic: %s. Please generate an educational video about this subject.", data.Topic)
	}

	var sb strings.Builder
	for _, s := range data.Summaries {
		sb.WriteString(fmt.Sprintf("Source: %s\n%s\n\n", s.Title, s.Snippet))
	}
	if len(data.News) > 0 {
		sb.WriteString("Recent News:\n")
		for _, n := range data.News {
			sb.WriteString(fmt.Sprintf("%s: %s\n\n", n.Title, n.Snippet))
		}
	}

	text := strings.TrimSpace(sb.String())
	if maxChars > 0 && len(text) > maxChars {
		text = text[:maxChars]
	}
	return text
}
