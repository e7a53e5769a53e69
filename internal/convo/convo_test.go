package convo

import (
	"testing"
	"time"

	"github.com/tbu-portal/tbu-chatbot-go/internal/intent"
)

var now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func TestMergeEmptyIntentKeepsContext(t *testing.T) {
	t.Parallel()

	prev := &Context{
		DateRef:       &intent.DateReference{Kind: intent.DateAbsolute, Day: 10, Month: 5},
		TimeFilter:    &intent.TimeWindow{Start: 12 * 60, End: 18 * 60},
		Leader:        "Long",
		TopicKeywords: []string{"hoi nghi"},
		LastSeen:      now.Add(-time.Minute),
	}

	merged := Merge(prev, intent.ExtractedIntent{}, now)

	if merged.DateRef == nil || merged.DateRef.Day != 10 || merged.DateRef.Month != 5 {
		t.Errorf("DateRef lost: %+v", merged.DateRef)
	}
	if merged.TimeFilter == nil || merged.TimeFilter.Start != 12*60 {
		t.Errorf("TimeFilter lost: %+v", merged.TimeFilter)
	}
	if merged.Leader != "Long" {
		t.Errorf("Leader = %q", merged.Leader)
	}
	if len(merged.TopicKeywords) != 1 {
		t.Errorf("TopicKeywords = %v", merged.TopicKeywords)
	}
}

func DateAbs(day, month int) intent.DateReference {
	return intent.DateReference{Kind: intent.DateAbsolute, Day: day, Month: month}
}

func TestMergeNewFieldsOverwrite(t *testing.T) {
	t.Parallel()

	prev := &Context{Leader: "hiệu trưởng", DateRef: &intent.DateReference{Kind: intent.DateToday}}

	ref := DateAbs(20, 12)
	merged := Merge(prev, intent.ExtractedIntent{
		DateRef: &ref,
		Leader:  "Long",
	}, now)

	if merged.Leader != "Long" {
		t.Errorf("Leader = %q, want overwrite", merged.Leader)
	}
	if merged.DateRef.Kind != intent.DateAbsolute || merged.DateRef.Day != 20 {
		t.Errorf("DateRef = %+v, want overwrite", merged.DateRef)
	}
}

func TestMergeNilPrevious(t *testing.T) {
	t.Parallel()

	merged := Merge(nil, intent.ExtractedIntent{Leader: "Long"}, now)
	if merged.Leader != "Long" {
		t.Errorf("Leader = %q", merged.Leader)
	}
	if merged.DateRef != nil {
		t.Error("DateRef invented on merge")
	}
}

func TestMergeDoesNotAliasIntentFields(t *testing.T) {
	t.Parallel()

	ref := DateAbs(10, 5)
	it := intent.ExtractedIntent{DateRef: &ref}
	merged := Merge(nil, it, now)

	ref.Day = 11
	if merged.DateRef.Day != 10 {
		t.Error("merged context aliases the intent's DateReference")
	}
}

func TestStoreGetPutExpiry(t *testing.T) {
	t.Parallel()

	store := NewStore(30*time.Minute, time.Hour, nil)
	defer store.Stop()

	if got := store.Get("s1", now); got != nil {
		t.Errorf("unknown session = %+v, want nil", got)
	}

	ctx := Merge(nil, intent.ExtractedIntent{Leader: "Long"}, now)
	store.Put("s1", ctx)

	if got := store.Get("s1", now.Add(29*time.Minute)); got == nil || got.Leader != "Long" {
		t.Errorf("live session = %+v", got)
	}
	if got := store.Get("s1", now.Add(31*time.Minute)); got != nil {
		t.Errorf("expired session = %+v, want nil", got)
	}
}

func TestStoreSessionsIndependent(t *testing.T) {
	t.Parallel()

	store := NewStore(30*time.Minute, time.Hour, nil)
	defer store.Stop()

	store.Put("a", Merge(nil, intent.ExtractedIntent{Leader: "A"}, now))
	store.Put("b", Merge(nil, intent.ExtractedIntent{Leader: "B"}, now))

	if got := store.Get("a", now); got.Leader != "A" {
		t.Errorf("session a = %q", got.Leader)
	}
	if got := store.Get("b", now); got.Leader != "B" {
		t.Errorf("session b = %q", got.Leader)
	}
}

func TestStoreStopIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, time.Minute, nil)
	store.Stop()
	store.Stop()
}

func TestTouchCapsHistory(t *testing.T) {
	t.Parallel()

	var ctx Context
	for i := range 8 {
		ctx.Touch(string(rune('a'+i)), now)
	}
	if len(ctx.RecentQueries) != maxRecentQueries {
		t.Errorf("history len = %d, want %d", len(ctx.RecentQueries), maxRecentQueries)
	}
	if ctx.MessageCount != 8 {
		t.Errorf("MessageCount = %d", ctx.MessageCount)
	}
	if ctx.RecentQueries[0] != "h" {
		t.Errorf("newest first, got %q", ctx.RecentQueries[0])
	}
}
