package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/acuity/internal/acuity"
	"github.com/linnemanlabs/acuity/internal/triage"
)

func criticalEvaluation() *triage.Evaluation {
	return &triage.Evaluation{
		ID: "01JN123ABCDEFGHJKMNPQRSTVW",
		Outcome: acuity.Outcome{
			Level:       acuity.LevelResuscitation,
			Confidence:  0.98,
			Explanation: "Phát hiện dấu hiệu đe dọa tính mạng (đường thở/hô hấp/tuần hoàn).",
			Rule:        acuity.RuleResuscitation,
			Trigger:     "spo2<90",
		},
		AgeInYears:      71,
		DefaultedVitals: []string{"sys_bp", "temp"},
		EvaluatedAt:     time.Date(2026, 2, 26, 14, 23, 0, 0, time.UTC),
	}
}

func TestNotify_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	if err := n.Notify(context.Background(), criticalEvaluation()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	blocks, ok := got["blocks"].([]any)
	if !ok {
		t.Fatal("expected blocks array in payload")
	}

	// header, divider, fields, explanation, divider, context = 6 blocks
	if len(blocks) != 6 {
		t.Errorf("blocks count = %d, want 6", len(blocks))
	}

	header := blocks[0].(map[string]any)
	headerText := header["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "Resuscitation") {
		t.Errorf("header text = %q, want to contain Resuscitation", headerText)
	}
	if !strings.Contains(headerText, "\U0001f534") {
		t.Errorf("header should contain red circle for resuscitation level")
	}

	var texts []string
	for _, f := range blocks[2].(map[string]any)["fields"].([]any) {
		texts = append(texts, f.(map[string]any)["text"].(string))
	}
	ctxText := blocks[5].(map[string]any)["elements"].([]any)[0].(map[string]any)["text"].(string)
	texts = append(texts, ctxText)

	all := strings.Join(texts, "\n")
	for _, want := range []string{"*Trigger:* spo2<90", "*Vitals defaulted:* sys_bp, temp", "01JN123ABCDEFGHJKMNPQRSTVW", "2026-02-26 14:23:00 UTC"} {
		if !strings.Contains(all, want) {
			t.Errorf("payload missing %q in %q", want, all)
		}
	}
}

func TestNotify_NoOpWithoutURL(t *testing.T) {
	t.Parallel()

	n := New("", log.Nop())
	if err := n.Notify(context.Background(), criticalEvaluation()); err != nil {
		t.Fatalf("Notify with empty URL should be no-op, got: %v", err)
	}
}

func TestNotify_IgnoresNonCritical(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, nil)
	for _, lvl := range []acuity.Level{acuity.LevelEmergent, acuity.LevelUrgent, acuity.LevelLessUrgent, acuity.LevelNonUrgent} {
		ev := criticalEvaluation()
		ev.Outcome.Level = lvl
		if err := n.Notify(context.Background(), ev); err != nil {
			t.Fatalf("Notify(level %d): %v", lvl, err)
		}
	}
	if got := hits.Load(); got != 0 {
		t.Errorf("webhook hits = %d, want 0", got)
	}
}

func TestNotify_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error " + strings.Repeat("x", 2000)))
	}))
	defer srv.Close()

	n := New(srv.URL, log.Nop())
	err := n.Notify(context.Background(), criticalEvaluation())
	if err == nil {
		t.Fatal("expected error on non-OK status")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %q, want to contain status code 500", err.Error())
	}
	if len(err.Error()) > maxErrorBodyLen+100 {
		t.Errorf("error length = %d, want response body truncated", len(err.Error()))
	}
}

func TestNotify_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := New(srv.URL, log.Nop()).Notify(ctx, criticalEvaluation()); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestBuildMessage_TruncatesLongExplanation(t *testing.T) {
	t.Parallel()

	ev := criticalEvaluation()
	ev.Outcome.Explanation = strings.Repeat("đ", 4000)

	blocks := buildMessage(ev)["blocks"].([]map[string]any)
	text := blocks[3]["text"].(map[string]any)["text"].(string)

	prefix := "*Explanation*\n\n"
	if n := utf8.RuneCountInString(text); n > maxExplanationLen+utf8.RuneCountInString(prefix) {
		t.Errorf("explanation rune count = %d, expected <= %d", n, maxExplanationLen+len(prefix))
	}
	if !utf8.ValidString(text) {
		t.Error("truncation split a multi-byte rune")
	}
	if !strings.HasSuffix(text, "...") {
		t.Error("expected truncated explanation to end with ...")
	}
}

func TestBuildMessage_Header(t *testing.T) {
	t.Parallel()

	msg := buildMessage(criticalEvaluation())

	if got, want := msg["text"], "Resuscitation evaluation 01JN123ABCDEFGHJKMNPQRSTVW"; got != want {
		t.Errorf("fallback text = %q, want %q", got, want)
	}
	header := msg["blocks"].([]map[string]any)[0]["text"].(map[string]any)["text"].(string)
	if want := "\U0001f534 Resuscitation: level 1"; header != want {
		t.Errorf("header = %q, want %q", header, want)
	}
}

func FuzzSlackBuild(f *testing.F) {
	f.Add("resuscitation", "marker:khó thở", "Phát hiện dấu hiệu đe dọa tính mạng.")
	f.Add("", "", "")
	f.Add("<@U123> mention", "*bold* _italic_ ~strike~", "```code block``` and <http://example.com|link>")
	f.Add("rule\x00\x01\x02", "trig\nline", "expl\ttab")
	f.Add(strings.Repeat("A", 5000), "spo2<90", strings.Repeat("x", 10000))

	f.Fuzz(func(t *testing.T, rule, trigger, explanation string) {
		ev := criticalEvaluation()
		ev.Outcome.Rule = rule
		ev.Outcome.Trigger = trigger
		ev.Outcome.Explanation = explanation

		// Must not panic
		msg := buildMessage(ev)

		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("buildMessage produced non-marshalable output: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("buildMessage JSON does not round-trip: %v", err)
		}

		blocks, ok := decoded["blocks"].([]any)
		if !ok {
			t.Fatal("expected blocks array")
		}
		if len(blocks) != 6 {
			t.Fatalf("blocks count = %d, want 6", len(blocks))
		}
	})
}
