// Package genai provides the generative answer fallback for questions
// the rule-based engine and the FAQ index cannot handle.
//
// Architecture:
//   - Gemini: uses google.golang.org/genai (official SDK)
//   - Groq: uses github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// Providers are tried in configured order; the first one that returns a
// non-empty answer wins.
package genai

import "context"

// Provider identifies an LLM provider.
type Provider string

const (
	// ProviderGemini is Google's Gemini API (native SDK).
	ProviderGemini Provider = "gemini"
	// ProviderGroq is Groq's OpenAI-compatible API.
	ProviderGroq Provider = "groq"
)

// ProviderEndpoint maps OpenAI-compatible providers to their base URL.
// Gemini is absent because it uses its own SDK.
var ProviderEndpoint = map[Provider]string{
	ProviderGroq: "https://api.groq.com/openai/v1/",
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// Turn is one prior exchange in the conversation.
type Turn struct {
	Question string
	Answer   string
}

// Request carries everything a provider needs to answer a question.
type Request struct {
	// Question is the user's current message.
	Question string
	// History holds recent turns, oldest first. Providers cap it at
	// MaxHistoryTurns.
	History []Turn
	// Sources are retrieved portal snippets the answer must be
	// grounded on.
	Sources []string
}

// ChatClient generates an answer for a single provider.
type ChatClient interface {
	// Generate produces an answer for the request.
	Generate(ctx context.Context, req Request) (string, error)
	// Provider returns the provider type for logging and metrics.
	Provider() Provider
	// Close releases resources held by the client.
	Close() error
}

// MaxHistoryTurns bounds how much conversation history is replayed to
// the model.
const MaxHistoryTurns = 4

// Default models per provider.
const (
	DefaultGeminiChatModel = "gemini-2.5-flash"
	DefaultGroqChatModel   = "llama-3.3-70b-versatile"
)

// systemPrompt instructs the model to behave as the portal assistant.
// Responses must stay in Vietnamese and grounded on provided context.
const systemPrompt = `Bạn là trợ lý ảo của Trường Đại học Thái Bình, trả lời trên cổng thông tin điện tử của trường.

Quy tắc:
- Luôn trả lời bằng tiếng Việt, ngắn gọn và lịch sự.
- Chỉ trả lời dựa trên phần "Thông tin tham khảo" được cung cấp.
- Nếu thông tin tham khảo không đủ để trả lời, hãy nói rằng bạn chưa có thông tin và gợi ý người dùng liên hệ phòng ban phụ trách.
- Không bịa đặt số liệu, ngày tháng hoặc tên người.
- Không trả lời các câu hỏi ngoài phạm vi nhà trường.`

// capHistory trims history to the most recent MaxHistoryTurns turns.
func capHistory(history []Turn) []Turn {
	if len(history) > MaxHistoryTurns {
		return history[len(history)-MaxHistoryTurns:]
	}
	return history
}
