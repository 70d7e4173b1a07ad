package provider

// Shape A: the "responses" convention.
type (
	responsesRequest struct {
		Model           string           `json:"model"`
		Input           []responsesInput `json:"input"`
		MaxOutputTokens int              `json:"max_output_tokens"`
		Temperature     float64          `json:"temperature"`
	}

	responsesInput struct {
		Role    string             `json:"role"`
		Content []responsesContent `json:"content"`
	}

	responsesContent struct {
		Type     string `json:"type"`
		Text     string `json:"text,omitempty"`
		ImageURL string `json:"image_url,omitempty"`
	}
)

// Shape B: the conversational "messages" convention.
type (
	chatRequest struct {
		Model       string        `json:"model"`
		Messages    []chatMessage `json:"messages"`
		MaxTokens   int           `json:"max_tokens"`
		Temperature float64       `json:"temperature"`
	}

	chatMessage struct {
		Role    string        `json:"role"`
		Content []chatContent `json:"content"`
	}

	chatContent struct {
		Type     string        `json:"type"`
		Text     string        `json:"text,omitempty"`
		ImageURL *chatImageURL `json:"image_url,omitempty"`
	}

	chatImageURL struct {
		URL string `json:"url"`
	}
)

func newResponsesRequest(model, prompt, dataURI string, maxTokens int, temperature float64) responsesRequest {
	return responsesRequest{
		Model: model,
		Input: []responsesInput{{
			Role: "user",
			Content: []responsesContent{
				{Type: "input_text", Text: prompt},
				{Type: "input_image", ImageURL: dataURI},
			},
		}},
		MaxOutputTokens: maxTokens,
		Temperature:     temperature,
	}
}

func newChatRequest(model, prompt, dataURI string, maxTokens int, temperature float64) chatRequest {
	return chatRequest{
		Model: model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContent{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &chatImageURL{URL: dataURI}},
			},
		}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}
