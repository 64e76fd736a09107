package types

// ResearchData aggregates web findings for one topic. It is always usable:
// a failed research pass produces a stub with a minimal CombinedText.
type ResearchData struct {
	Topic        string     `json:"topic"`
	Summaries    []Summary  `json:"summaries"`
	News         []NewsItem `json:"news"`
	CombinedText string     `json:"combined_text"`
}

// Summary is one web search result
type Summary struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// NewsItem is one recent news result
type NewsItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
}

// Scene is one segment of the output video, backed by one footage clip
// and a time slice of the narration
type Scene struct {
	ID          int     `json:"id"`
	Text        string  `json:"text"`
	SearchQuery string  `json:"search_query"`
	Duration    float64 `json:"duration"`

	// ActualDuration is computed from the real narration length,
	// never declared by the model
	ActualDuration float64 `json:"actual_duration,omitempty"`
}

// Script is the full structured script for one video
type Script struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Narration   string   `json:"narration"`
	Scenes      []Scene  `json:"scenes"`
}

// PublishResult identifies an uploaded video
type PublishResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
