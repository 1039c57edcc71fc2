package tokenizer

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

var offlineLoader sync.Once

// useOfflineLoader makes encodings resolve from the BPE ranks compiled into
// the binary, so loading never touches the network.
func useOfflineLoader() {
	offlineLoader.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
}

// Counter counts tokens with a tiktoken encoding resolved at construction.
type Counter struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

// NewCounter resolves the encoding up front. An unknown encoding is a startup error.
func NewCounter(encoding string, logger *slog.Logger) (*Counter, error) {
	if encoding == "" {
		encoding = "o200k_base"
	}
	if logger == nil {
		logger = slog.Default()
	}
	useOfflineLoader()
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
	}
	logger.With("component", "tokenizer").Info("tiktoken encoding loaded", "encoding", encoding)
	return &Counter{encoding: encoding, enc: enc}, nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Encoding names the loaded encoding.
func (c *Counter) Encoding() string {
	return c.encoding
}

// Estimate approximates token count at roughly four characters per token,
// never below the word count.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	byRunes := (utf8.RuneCountInString(text) + 3) / 4
	words := len(strings.Fields(text))
	if byRunes < words {
		return words
	}
	return byRunes
}
