package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration decodes TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

// EmbeddingConfig falls back to the [llm] provider settings for empty fields.
type EmbeddingConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type StoreConfig struct {
	Driver     string `toml:"driver"` // sqlite | pgvector
	Path       string `toml:"path"`
	DSN        string `toml:"dsn"`
	Table      string `toml:"table"`
	Dimensions int    `toml:"dimensions"`
}

type GraphConfig struct {
	Enabled  bool   `toml:"enabled"`
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type ConcurrencyConfig struct {
	Classify int `toml:"classify"`
}

type PipelineConfig struct {
	OutputDir        string `toml:"output_dir"`
	MaxInputRunes    int    `toml:"max_input_runes"`
	MaxFragmentChars int    `toml:"max_fragment_chars"`
	TopCommunities   int    `toml:"top_communities"`
	IndexRecords     bool   `toml:"index_records"`
	Narrative        bool   `toml:"narrative"`
	Report           bool   `toml:"report"`
}

type QueryConfig struct {
	TopK    int      `toml:"top_k"`
	Timeout Duration `toml:"timeout"`
	Rerank  bool     `toml:"rerank"`
}

type RetryConfig struct {
	MaxRetries     int      `toml:"max_retries"`
	BaseDelay      Duration `toml:"base_delay"`
	MaxDelay       Duration `toml:"max_delay"`
	AttemptTimeout Duration `toml:"attempt_timeout"`
}

type EmotionConfig struct {
	Backend string `toml:"backend"` // lexicon | llm | responses
	Model   string `toml:"model"`
	APIKey  string `toml:"api_key"`
}

type PromptsConfig struct {
	Query     string `toml:"query"`
	Narrative string `toml:"narrative"`
	Emotion   string `toml:"emotion"`
	Rerank    string `toml:"rerank"`
}

type LogConfig struct {
	Mode  string `toml:"mode"`
	Level string `toml:"level"`
}

type Config struct {
	LLM         LLMConfig         `toml:"llm"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Store       StoreConfig       `toml:"store"`
	Graph       GraphConfig       `toml:"graph"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
	Pipeline    PipelineConfig    `toml:"pipeline"`
	Query       QueryConfig       `toml:"query"`
	Retry       RetryConfig       `toml:"retry"`
	Emotion     EmotionConfig     `toml:"emotion"`
	Prompts     PromptsConfig     `toml:"prompts"`
	Log         LogConfig         `toml:"log"`
}

const DefaultQueryPrompt = `You are analyzing a Reddit user's data to understand their personality and preferences. Given the context below, answer the user's question.

Context:
{context}

Question:
{question}

Answer:`

const DefaultNarrativePrompt = `Write a short third-person summary of this Reddit user's personality and interests based on the analysis below. Use only the facts given.

{persona}

Summary:`

const DefaultEmotionPrompt = `Classify the emotions expressed in the text below. Respond with a JSON object whose keys are exactly "sadness", "joy", "love", "anger", "fear" and "surprise" and whose values are scores between 0 and 1.

Text:
{text}`

const DefaultRerankPrompt = `Given the query: "{query}"

Rank the following passages by relevance to the query. Return the indices of the passages in order of relevance (most relevant first) as a JSON object: {"indices": [...]}.

Passages:
{passages}`

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "llama3",
			BaseURL:  "http://localhost:11434",
		},
		Embedding: EmbeddingConfig{
			Model: "nomic-embed-text",
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "persona.db",
			Table:  "persona_fragments",
		},
		Graph: GraphConfig{
			URI: "bolt://localhost:7687",
		},
		Concurrency: ConcurrencyConfig{Classify: 4},
		Pipeline: PipelineConfig{
			OutputDir:        "data/personas",
			MaxInputRunes:    2000,
			MaxFragmentChars: 800,
			TopCommunities:   10,
			IndexRecords:     true,
			Report:           true,
		},
		Query: QueryConfig{
			TopK:    3,
			Timeout: Duration{60 * time.Second},
		},
		Retry: RetryConfig{
			MaxRetries:     3,
			BaseDelay:      Duration{500 * time.Millisecond},
			MaxDelay:       Duration{10 * time.Second},
			AttemptTimeout: Duration{30 * time.Second},
		},
		Emotion: EmotionConfig{Backend: "lexicon"},
		Prompts: PromptsConfig{
			Query:     DefaultQueryPrompt,
			Narrative: DefaultNarrativePrompt,
			Emotion:   DefaultEmotionPrompt,
			Rerank:    DefaultRerankPrompt,
		},
		Log: LogConfig{Mode: "dev", Level: "info"},
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file keep their default.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv overrides file values with environment variables when they are set.
func (c *Config) ApplyEnv() {
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.Embedding.Provider, "EMBEDDING_PROVIDER")
	setString(&c.Embedding.Model, "LLM_EMBEDDING_MODEL")
	setString(&c.Embedding.APIKey, "EMBEDDING_API_KEY")
	setString(&c.Embedding.BaseURL, "EMBEDDING_BASE_URL")
	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.Path, "STORE_PATH")
	setString(&c.Store.DSN, "DATABASE_URL")
	setString(&c.Graph.URI, "MEMGRAPH_URI")
	setString(&c.Graph.User, "MEMGRAPH_USER")
	setString(&c.Graph.Password, "MEMGRAPH_PASSWORD")
	setString(&c.Emotion.Backend, "EMOTION_BACKEND")
	setString(&c.Emotion.APIKey, "OPENAI_API_KEY")
	setString(&c.Log.Mode, "LOG_MODE")
	setString(&c.Log.Level, "LOG_LEVEL")
	if v := os.Getenv("CLASSIFY_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency.Classify = n
		}
	}
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Concurrency.Classify < 1 {
		problems = append(problems, "concurrency.classify must be >= 1")
	}
	if c.Pipeline.MaxInputRunes < 1 {
		problems = append(problems, "pipeline.max_input_runes must be >= 1")
	}
	if c.Pipeline.MaxFragmentChars < 1 {
		problems = append(problems, "pipeline.max_fragment_chars must be >= 1")
	}
	if c.Query.TopK < 1 {
		problems = append(problems, "query.top_k must be >= 1")
	}
	if c.Retry.MaxRetries < 0 {
		problems = append(problems, "retry.max_retries must be >= 0")
	}
	switch strings.ToLower(c.Store.Driver) {
	case "sqlite", "pgvector":
	default:
		problems = append(problems, fmt.Sprintf("unsupported store.driver %q", c.Store.Driver))
	}
	switch strings.ToLower(c.Emotion.Backend) {
	case "lexicon", "llm", "responses":
	default:
		problems = append(problems, fmt.Sprintf("unsupported emotion.backend %q", c.Emotion.Backend))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// EmbeddingLLM resolves the embedding provider settings against [llm].
func (c *Config) EmbeddingLLM() LLMConfig {
	out := LLMConfig{
		Provider: c.Embedding.Provider,
		Model:    c.Embedding.Model,
		APIKey:   c.Embedding.APIKey,
		BaseURL:  c.Embedding.BaseURL,
	}
	if out.Provider == "" {
		out.Provider = c.LLM.Provider
		if out.APIKey == "" {
			out.APIKey = c.LLM.APIKey
		}
		if out.BaseURL == "" {
			out.BaseURL = c.LLM.BaseURL
		}
	}
	return out
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
