package chatgpt

import "strings"

// InputContent is one typed content part of an input message.
type InputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// InputItem is a role-tagged message sent to the Responses API.
type InputItem struct {
	Role    string         `json:"role"`
	Content []InputContent `json:"content"`
}

// TextInput builds a message holding a single input_text part.
func TextInput(role, text string) InputItem {
	return InputItem{Role: role, Content: []InputContent{{Type: "input_text", Text: text}}}
}

// TextFormat selects the output format.
type TextFormat struct {
	Type string `json:"type"`
}

// TextConfig wraps the output text format.
type TextConfig struct {
	Format TextFormat `json:"format"`
}

// Reasoning configures reasoning models.
type Reasoning struct {
	Effort string `json:"effort,omitempty"`
}

// ResponseRequest is the payload sent to /responses. Optional sampling controls
// are pointers so unsupported ones are left out of the body entirely.
type ResponseRequest struct {
	Model           string      `json:"model"`
	Input           []InputItem `json:"input"`
	Text            *TextConfig `json:"text,omitempty"`
	Reasoning       *Reasoning  `json:"reasoning,omitempty"`
	Store           bool        `json:"store"`
	Temperature     *float64    `json:"temperature,omitempty"`
	TopP            *float64    `json:"top_p,omitempty"`
	MaxOutputTokens *int        `json:"max_output_tokens,omitempty"`
}

// OutputContent is one typed content part of an output item.
type OutputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// OutputItem is one entry of the response output list.
type OutputItem struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Role    string          `json:"role,omitempty"`
	Status  string          `json:"status,omitempty"`
	Content []OutputContent `json:"content,omitempty"`
}

// ResponseUsage reports token accounting.
type ResponseUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ResponseError is populated when the API reports a failed response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response captures the fields we read from /responses.
type Response struct {
	ID     string         `json:"id"`
	Model  string         `json:"model"`
	Status string         `json:"status"`
	Output []OutputItem   `json:"output"`
	Usage  *ResponseUsage `json:"usage,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// MessageText concatenates the text parts of the first message item.
// ok is false when the output holds no message.
func (r Response) MessageText() (text string, ok bool) {
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		var sb strings.Builder
		for _, part := range item.Content {
			sb.WriteString(part.Text)
		}
		return sb.String(), true
	}
	return "", false
}

// EmbeddingRequest is the payload sent to /embeddings.
type EmbeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// EmbeddingData is one returned vector.
type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// EmbeddingResponse captures the embeddings result.
type EmbeddingResponse struct {
	Model string          `json:"model"`
	Data  []EmbeddingData `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}
