package ragdex

import (
	"time"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type providerConfig struct {
	apiKey     string
	baseURL    string
	model      string
	dimensions int
	timeout    time.Duration
}

type clientConfig struct {
	// Snapshot storage: "file" (default) or "redis".
	driver       string
	snapshotPath string
	redisAddrs   []string
	redisPass    string
	redisKey     string

	// Providers. Custom implementations win over built-in configs.
	embedder  Embedder
	generator Generator
	gemini    *providerConfig
	openai    *providerConfig

	generationModel string
	genTemperature  float32
	genMaxTokens    int

	topK      int
	threshold float64

	maxChunkChars    int
	minChunkChars    int
	overlapSentences int

	cacheEmbeddings bool

	logger *zap.Logger
}

// WithSnapshotFile stores the vector snapshot in a JSON file (the default
// driver, default path data/vector_store.json).
func WithSnapshotFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "file"
		c.snapshotPath = path
	})
}

// WithRedis stores the vector snapshot under a key in Redis/Valkey and
// enables the embedding cache on the same connection.
func WithRedis(addr, password, key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.redisAddrs = []string{addr}
		c.redisPass = password
		c.redisKey = key
		c.cacheEmbeddings = true
	})
}

// WithGemini uses the Google Gemini API for embedding and generation.
func WithGemini(apiKey, embeddingModel, generationModel string) Option {
	return optionFunc(func(c *clientConfig) {
		c.gemini = &providerConfig{apiKey: apiKey, model: embeddingModel}
		c.generationModel = generationModel
	})
}

// WithOpenAI uses an OpenAI-compatible API for embedding and generation.
// baseURL may be empty for api.openai.com.
func WithOpenAI(apiKey, baseURL, embeddingModel, generationModel string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = &providerConfig{apiKey: apiKey, baseURL: baseURL, model: embeddingModel}
		c.generationModel = generationModel
	})
}

// WithEmbedder plugs in a custom embedding implementation.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator plugs in a custom generation implementation.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = logger
	})
}

// WithTopK sets how many chunks are retained after ranking.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithThreshold sets the minimum cosine similarity for a match.
func WithThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.threshold = t
	})
}

// WithChunking overrides the chunker's size limits.
func WithChunking(maxChars, minChars, overlapSentences int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxChunkChars = maxChars
		c.minChunkChars = minChars
		c.overlapSentences = overlapSentences
	})
}

// WithGenerationOptions overrides generation sampling settings.
func WithGenerationOptions(temperature float32, maxTokens int) Option {
	return optionFunc(func(c *clientConfig) {
		c.genTemperature = temperature
		c.genMaxTokens = maxTokens
	})
}
