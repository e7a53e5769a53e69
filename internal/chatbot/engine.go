// Package chatbot orchestrates one chat turn: normalize the message,
// extract an intent, merge it with remembered session context, query
// cached portal data and render a Vietnamese answer. Questions nothing
// rule-based can handle fall through to the FAQ table and then to the
// generative responder.
package chatbot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tbu-portal/tbu-chatbot-go/internal/answer"
	"github.com/tbu-portal/tbu-chatbot-go/internal/convo"
	"github.com/tbu-portal/tbu-chatbot-go/internal/faq"
	"github.com/tbu-portal/tbu-chatbot-go/internal/genai"
	"github.com/tbu-portal/tbu-chatbot-go/internal/intent"
	"github.com/tbu-portal/tbu-chatbot-go/internal/logger"
	"github.com/tbu-portal/tbu-chatbot-go/internal/metrics"
	"github.com/tbu-portal/tbu-chatbot-go/internal/rag"
	"github.com/tbu-portal/tbu-chatbot-go/internal/ratelimit"
	"github.com/tbu-portal/tbu-chatbot-go/internal/schedule"
	"github.com/tbu-portal/tbu-chatbot-go/internal/sentry"
	"github.com/tbu-portal/tbu-chatbot-go/internal/storage"
	"github.com/tbu-portal/tbu-chatbot-go/internal/textnorm"
)

// Validation responses.
const (
	EmptyMessageResponse = "Bạn chưa nhập câu hỏi. Hãy hỏi tôi về lịch công tác, tin tức hoặc thông báo của trường nhé!"

	TooLongResponseFmt = "Câu hỏi của bạn quá dài (tối đa %d ký tự). Vui lòng rút gọn và thử lại."
)

// How many news titles one answer lists.
const newsListLimit = 5

// How many retrieved snippets ground a generative answer.
const ragTopN = 3

// Options configures the engine.
type Options struct {
	DB        *storage.DB
	Store     *convo.Store
	Responder *genai.Responder        // nil disables the generative fallback
	RAGIndex  *rag.Index              // nil disables retrieval grounding
	LLMBudget *ratelimit.KeyedLimiter // nil means unlimited
	FAQItems  []faq.Item              // nil falls back to faq.Default
	Metrics   *metrics.Metrics
	Logger    *logger.Logger

	// MaxMessageLength caps the accepted message size in runes.
	MaxMessageLength int
	// TopicMatchAll requires every topic keyword to match.
	TopicMatchAll bool
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Result is the outcome of one processed turn.
type Result struct {
	Answer     string
	Intent     string   // extracted intent name, for metrics and clients
	Outcome    string   // canned, schedule, news, faq, generated, unknown, error
	Confidence float64  // extraction confidence, 0 when not applicable
	Sources    []string // retrieved snippets grounding a generated answer, empty otherwise
}

// Engine processes chat turns. Safe for concurrent use.
type Engine struct {
	db        *storage.DB
	store     *convo.Store
	responder *genai.Responder
	ragIndex  *rag.Index
	llmBudget *ratelimit.KeyedLimiter
	faqItems  []faq.Item
	metrics   *metrics.Metrics
	logger    *logger.Logger

	maxMessageLength int
	topicMatchAll    bool
	now              func() time.Time
}

// New creates an engine from options, applying defaults.
func New(opts Options) *Engine {
	e := &Engine{
		db:               opts.DB,
		store:            opts.Store,
		responder:        opts.Responder,
		ragIndex:         opts.RAGIndex,
		llmBudget:        opts.LLMBudget,
		faqItems:         opts.FAQItems,
		metrics:          opts.Metrics,
		logger:           opts.Logger,
		maxMessageLength: opts.MaxMessageLength,
		topicMatchAll:    opts.TopicMatchAll,
		now:              opts.Now,
	}
	if e.faqItems == nil {
		e.faqItems = faq.Default
	}
	if e.maxMessageLength <= 0 {
		e.maxMessageLength = 500
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = logger.New("info")
	}
	return e
}

// Process answers one message for a session. Client-supplied history
// turns only feed the generative fallback prompt; the rule pipeline
// relies on the server-side session context instead. It never returns
// an error; degraded paths yield a polite Vietnamese answer.
func (e *Engine) Process(ctx context.Context, sessionID, message string, history []genai.Turn) (res Result) {
	start := e.now()

	defer func() {
		if r := recover(); r != nil {
			sentry.CapturePanic(ctx, r, sessionID)
			e.logger.WithSessionID(sessionID).WithField("panic", r).Error("panic while processing message")
			res = Result{Answer: answer.ErrorResponse, Intent: "unknown", Outcome: "error"}
		}
		if e.metrics != nil {
			e.metrics.RecordChatMessage(res.Intent, res.Outcome, time.Since(start).Seconds())
		}
	}()

	message = strings.TrimSpace(message)
	if message == "" {
		return Result{Answer: EmptyMessageResponse, Intent: "unknown", Outcome: "rejected"}
	}
	if runeLen := len([]rune(message)); runeLen > e.maxMessageLength {
		return Result{
			Answer:  tooLongResponse(e.maxMessageLength),
			Intent:  "unknown",
			Outcome: "rejected",
		}
	}

	n := textnorm.Normalize(message)
	it := intent.Extract(n, start)

	log := e.logger.WithSessionID(sessionID).WithField("intent", it.Type.String())
	log.WithField("length", len(message)).Debug("message received")

	switch it.Type {
	case intent.Greeting:
		return Result{Answer: answer.GreetingResponse, Intent: it.Type.String(), Outcome: "canned", Confidence: it.Confidence}
	case intent.Help:
		return Result{Answer: answer.HelpResponse, Intent: it.Type.String(), Outcome: "canned", Confidence: it.Confidence}
	case intent.Thanks:
		return Result{Answer: answer.ThanksResponse, Intent: it.Type.String(), Outcome: "canned", Confidence: it.Confidence}
	case intent.News:
		return e.answerNews(ctx, it, storage.KindNews, "tin tức")
	case intent.Announcements:
		return e.answerNews(ctx, it, storage.KindAnnouncement, "thông báo")
	}

	if it.Type.IsSchedule() || it.ScheduleCue {
		return e.answerSchedule(ctx, sessionID, message, it, start, log)
	}

	return e.answerFallback(ctx, sessionID, message, history, it, log)
}

// answerNews lists recent cached news or announcements.
func (e *Engine) answerNews(ctx context.Context, it intent.ExtractedIntent, kind, header string) Result {
	items, err := e.db.GetRecentNews(ctx, kind, newsListLimit)
	if err != nil {
		e.logger.WithError(err).Error("news lookup failed")
		return Result{Answer: answer.ErrorResponse, Intent: it.Type.String(), Outcome: "error"}
	}
	e.recordCacheLookup(kind, len(items) > 0)
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	return Result{
		Answer:     answer.FormatNewsList(header, titles),
		Intent:     it.Type.String(),
		Outcome:    "news",
		Confidence: it.Confidence,
	}
}

// answerSchedule resolves the query against remembered context and the
// cached schedule table.
func (e *Engine) answerSchedule(ctx context.Context, sessionID, message string, it intent.ExtractedIntent, now time.Time, log *logger.Logger) Result {
	var prev *convo.Context
	if e.store != nil {
		prev = e.store.Get(sessionID, now)
	}
	merged := convo.Merge(prev, it, now)

	// A bare schedule cue ("có lịch gì không?") with nothing remembered
	// defaults to the current week.
	if merged.DateRef == nil && merged.TimeFilter == nil && merged.Leader == "" && len(merged.TopicKeywords) == 0 {
		merged.DateRef = &intent.DateReference{Kind: intent.DateThisWeek}
	}

	filter := schedule.FilterFromIntent(merged.DateRef, merged.TimeFilter, merged.Leader, merged.TopicKeywords, e.topicMatchAll, now)

	entries, err := e.db.GetSchedules(ctx)
	if err != nil {
		log.WithError(err).Error("schedule lookup failed")
		return Result{Answer: answer.ErrorResponse, Intent: it.Type.String(), Outcome: "error"}
	}
	e.recordCacheLookup("schedules", len(entries) > 0)

	res := schedule.Query(entries, filter)

	if e.store != nil {
		merged.Touch(message, now)
		e.store.Put(sessionID, merged)
	}

	log.WithField("matched", res.Total).Debug("schedule query answered")
	return Result{
		Answer:     answer.FormatSchedules(res),
		Intent:     it.Type.String(),
		Outcome:    "schedule",
		Confidence: it.Confidence,
	}
}

// answerFallback tries the FAQ table, then the generative responder.
func (e *Engine) answerFallback(ctx context.Context, sessionID, message string, history []genai.Turn, it intent.ExtractedIntent, log *logger.Logger) Result {
	if hits := faq.Search(message, e.faqItems); len(hits) > 0 {
		if e.metrics != nil {
			e.metrics.RecordFAQLookup("hit")
		}
		return Result{
			Answer:     faq.FormatAnswer(hits),
			Intent:     it.Type.String(),
			Outcome:    "faq",
			Confidence: it.Confidence,
		}
	}
	if e.metrics != nil {
		e.metrics.RecordFAQLookup("miss")
	}

	if e.responder == nil || !e.responder.IsEnabled() {
		return Result{Answer: faq.NotFoundAnswer, Intent: it.Type.String(), Outcome: "unknown"}
	}

	if e.llmBudget != nil && !e.llmBudget.Allow(sessionID) {
		log.Warn("generative budget exhausted for session")
		return Result{Answer: faq.NotFoundAnswer, Intent: it.Type.String(), Outcome: "unknown"}
	}

	sources := e.retrieveSources(message)
	req := genai.Request{Question: message, History: history, Sources: sources}
	generated, err := e.responder.Respond(ctx, req)
	if err != nil {
		log.WithError(err).Warn("generative fallback failed")
		return Result{Answer: answer.ServiceUnavailableResponse, Intent: it.Type.String(), Outcome: "error"}
	}

	return Result{Answer: generated, Intent: it.Type.String(), Outcome: "generated", Sources: sources}
}

// retrieveSources collects snippets for grounding the generative
// answer. Retrieval errors only cost grounding, never the answer.
func (e *Engine) retrieveSources(message string) []string {
	if e.ragIndex == nil || !e.ragIndex.IsEnabled() {
		return nil
	}
	results, err := e.ragIndex.Search(message, ragTopN)
	if err != nil {
		e.logger.WithError(err).Warn("retrieval failed")
		return nil
	}
	sources := make([]string, 0, len(results))
	for _, r := range results {
		sources = append(sources, strings.TrimSpace(r.Title+". "+r.Content))
	}
	return sources
}

// recordCacheLookup tracks whether the cached portal data could serve
// the question at all. A miss here means the scrape jobs have not
// populated (or kept) the source.
func (e *Engine) recordCacheLookup(source string, populated bool) {
	if e.metrics == nil {
		return
	}
	if populated {
		e.metrics.RecordCacheHit(source)
	} else {
		e.metrics.RecordCacheMiss(source)
	}
}

func tooLongResponse(limit int) string {
	return fmt.Sprintf(TooLongResponseFmt, limit)
}
