package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Research ResearchConfig `yaml:"research"`
	Script   ScriptConfig   `yaml:"script"`
	Voice    VoiceConfig    `yaml:"voice"`
	Footage  FootageConfig  `yaml:"footage"`
	Video    VideoConfig    `yaml:"video"`
	Upload   UploadConfig   `yaml:"upload"`
	Paths    PathsConfig    `yaml:"paths"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

type ResearchConfig struct {
	MaxResults      int      `yaml:"max_results"`
	MaxNews         int      `yaml:"max_news"`
	Subreddits      []string `yaml:"subreddits"`
	MaxContextChars int      `yaml:"max_context_chars"`
}

type ScriptConfig struct {
	GroqModel   string  `yaml:"groq_model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	MinScenes   int     `yaml:"min_scenes"`
	MaxScenes   int     `yaml:"max_scenes"`
}

type VoiceConfig struct {
	Voice string `yaml:"voice"`
	Rate  string `yaml:"rate"`
}

type FootageConfig struct {
	PerPage            int `yaml:"per_page"`
	MinFileWidth       int `yaml:"min_file_width"`
	SearchTimeoutSec   int `yaml:"search_timeout_sec"`
	DownloadTimeoutSec int `yaml:"download_timeout_sec"`
}

type VideoConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	FPS             int     `yaml:"fps"`
	TitleSec        float64 `yaml:"title_sec"`
	TitleFadeSec    float64 `yaml:"title_fade_sec"`
	DefaultSceneSec float64 `yaml:"default_scene_sec"`
	MinSceneSec     float64 `yaml:"min_scene_sec"`
	FontFile        string  `yaml:"font_file"`
}

type UploadConfig struct {
	Visibility      string `yaml:"visibility"`
	CategoryID      string `yaml:"category_id"`
	DefaultLanguage string `yaml:"default_language"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
}

// Default returns the built-in configuration. Load applies the yaml file
// over these values, so a partial config.yaml is fine.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8000,
			LogLevel: "info",
		},
		Research: ResearchConfig{
			MaxResults:      6,
			MaxNews:         3,
			Subreddits:      []string{"todayilearned", "explainlikeimfive"},
			MaxContextChars: 8000,
		},
		Script: ScriptConfig{
			GroqModel:   "llama-3.3-70b-versatile",
			Temperature: 0.7,
			MaxTokens:   2000,
			MinScenes:   6,
			MaxScenes:   8,
		},
		Voice: VoiceConfig{
			Voice: "en-US-AriaNeural",
			Rate:  "+0%",
		},
		Footage: FootageConfig{
			PerPage:            5,
			MinFileWidth:       720,
			SearchTimeoutSec:   30,
			DownloadTimeoutSec: 60,
		},
		Video: VideoConfig{
			Width:           1920,
			Height:          1080,
			FPS:             24,
			TitleSec:        3.0,
			TitleFadeSec:    0.5,
			DefaultSceneSec: 5.0,
			MinSceneSec:     0.1,
			FontFile:        "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
		},
		Upload: UploadConfig{
			Visibility:      "private",
			CategoryID:      "27",
			DefaultLanguage: "en",
		},
		Paths: PathsConfig{
			Output: "outputs",
		},
	}
}

// Load reads a yaml config file over the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
