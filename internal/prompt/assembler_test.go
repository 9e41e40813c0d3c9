package prompt

import (
	"strings"
	"testing"

	"github.com/xhzhu1024/docqa/domain"
)

func TestPlainShape(t *testing.T) {
	a := NewAssembler(0)
	prior := []domain.Message{
		domain.UserMessage("hi"),
		domain.AssistantMessage("hello"),
	}

	messages := a.Plain(prior, "next question")
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
	if messages[0].Role != domain.RoleSystem {
		t.Fatalf("expected leading system message, got %s", messages[0].Role)
	}
	last := messages[len(messages)-1]
	if last.Role != domain.RoleUser || last.Content != "next question" {
		t.Fatalf("expected trailing user question, got %+v", last)
	}
}

func TestWithContextEmbedsContextAndHistory(t *testing.T) {
	a := NewAssembler(0)
	prior := []domain.Message{
		domain.UserMessage("earlier question"),
		domain.AssistantMessage("earlier answer"),
	}

	messages := a.WithContext(domain.ModeLocalOnly, "SNIPPET-A\n\nSNIPPET-B", prior, "current question")
	if len(messages) != 2 {
		t.Fatalf("expected system+user, got %d messages", len(messages))
	}

	system := messages[0]
	if system.Role != domain.RoleSystem {
		t.Fatalf("expected system message first, got %s", system.Role)
	}
	if !strings.Contains(system.Content, "SNIPPET-A") || !strings.Contains(system.Content, "SNIPPET-B") {
		t.Fatalf("context block missing from system message")
	}
	if !strings.Contains(system.Content, "Human: earlier question") {
		t.Fatalf("history missing from system message")
	}
	if !strings.Contains(system.Content, "Assistant: earlier answer") {
		t.Fatalf("assistant turn missing from system message")
	}

	if messages[1].Role != domain.RoleUser || messages[1].Content != "current question" {
		t.Fatalf("unexpected user message: %+v", messages[1])
	}
}

func TestWithContextTemplateSelection(t *testing.T) {
	a := NewAssembler(0)

	web := a.WithContext(domain.ModeWebOnly, "ctx", nil, "q")
	if !strings.Contains(web[0].Content, "Web search results") {
		t.Fatalf("web template not selected")
	}

	hybrid := a.WithContext(domain.ModeHybrid, "ctx", nil, "q")
	if !strings.Contains(hybrid[0].Content, "Reference material") {
		t.Fatalf("hybrid template not selected")
	}

	local := a.WithContext(domain.ModeLocalOnly, "ctx", nil, "q")
	if !strings.Contains(local[0].Content, "Document excerpts") {
		t.Fatalf("local template not selected")
	}
}

func TestFormatHistoryOrderAndLabels(t *testing.T) {
	history := []domain.Message{
		domain.UserMessage("one"),
		domain.AssistantMessage("two"),
		domain.UserMessage("three"),
	}
	got := FormatHistory(history)
	want := "Human: one\nAssistant: two\nHuman: three"
	if got != want {
		t.Fatalf("FormatHistory = %q, want %q", got, want)
	}
}

func TestTrimDropsOldestFirst(t *testing.T) {
	// A tiny budget forces trimming down to the most recent turns.
	a := NewAssembler(10)
	prior := []domain.Message{
		domain.UserMessage("this is a fairly long opening question about many things"),
		domain.AssistantMessage("this is a fairly long answer covering those things at length"),
		domain.UserMessage("short"),
	}

	messages := a.Plain(prior, "q")
	// system + trimmed prior + question
	kept := messages[1 : len(messages)-1]
	if len(kept) >= len(prior) {
		t.Fatalf("expected trimming, kept %d of %d", len(kept), len(prior))
	}
	if len(kept) > 0 && kept[len(kept)-1].Content != "short" {
		t.Fatalf("most recent turn must survive trimming, got %+v", kept)
	}
}

func TestZeroBudgetDisablesTrimming(t *testing.T) {
	a := NewAssembler(0)
	prior := make([]domain.Message, 0, 40)
	for i := 0; i < 20; i++ {
		prior = append(prior, domain.UserMessage("question"), domain.AssistantMessage("answer"))
	}
	messages := a.Plain(prior, "q")
	if len(messages) != len(prior)+2 {
		t.Fatalf("expected no trimming with zero budget, got %d messages", len(messages))
	}
}
