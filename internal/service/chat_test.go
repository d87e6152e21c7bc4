package service_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/service"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

func TestCreateSessionTitleAndMessages(t *testing.T) {
	t.Parallel()
	repo := service.NewChatRepository(newTestStore(t), quietLogger())

	question := strings.Repeat("sakit kepala ", 5)
	s, err := repo.CreateSession(question, "Istirahat dan minum air.")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if got := []rune(s.Title); len(got) != 30 || s.Title != question[:30] {
		t.Fatalf("expected 30 character title, got %q", s.Title)
	}
	if len(s.Messages) != 2 || s.Messages[0].Role != model.RoleUser || s.Messages[1].Role != model.RoleAssistant {
		t.Fatalf("expected user+assistant exchange, got %+v", s.Messages)
	}
	if s.ID == "" || s.Timestamp == 0 {
		t.Fatalf("expected id and timestamp, got %+v", s)
	}

	short, err := repo.CreateSession("Halo", "Halo juga")
	if err != nil {
		t.Fatalf("create short session: %v", err)
	}
	if short.Title != "Halo" {
		t.Fatalf("expected short title unchanged, got %q", short.Title)
	}

	sessions, err := repo.ListSessions()
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != short.ID {
		t.Fatalf("expected newest session first, got %+v", sessions)
	}
}

func TestCreateSessionTitleCountsRunes(t *testing.T) {
	t.Parallel()
	repo := service.NewChatRepository(store.NewMemoryStore(), quietLogger())

	s, err := repo.CreateSession(strings.Repeat("é", 40), "ok")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len([]rune(s.Title)) != 30 {
		t.Fatalf("expected 30 runes, got %d", len([]rune(s.Title)))
	}
}

func TestAppendToActive(t *testing.T) {
	t.Parallel()
	s := store.NewMemoryStore()
	repo := service.NewChatRepository(s, quietLogger())
	repo.Now = fixedClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local))

	first, err := repo.AppendToActive("", "Pusing", "Minum air")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	second, err := repo.CreateSession("Batuk", "Istirahat")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	updated, err := repo.AppendToActive(first.ID, "Masih pusing", "Periksa ke dokter")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if updated == nil || len(updated.Messages) != 4 || updated.Messages[2].Text != "Masih pusing" {
		t.Fatalf("expected 4 messages, got %+v", updated)
	}
	if updated.Title != first.Title || updated.Timestamp != first.Timestamp {
		t.Fatalf("append must not change title or timestamp")
	}

	sessions, _ := repo.ListSessions()
	if sessions[0].ID != second.ID || sessions[1].ID != first.ID {
		t.Fatalf("append must not reorder sessions, got %s, %s", sessions[0].ID, sessions[1].ID)
	}

	before, _, _ := s.Get(store.KeyChatSessions)
	missing, err := repo.AppendToActive("no-such-session", "x", "y")
	if err != nil || missing != nil {
		t.Fatalf("expected silent no-op for unknown session, got %+v, %v", missing, err)
	}
	after, _, _ := s.Get(store.KeyChatSessions)
	if string(before) != string(after) {
		t.Fatalf("unknown session must not write")
	}
}

func TestConversationGreetingIsNotStored(t *testing.T) {
	t.Parallel()
	s := store.NewMemoryStore()
	repo := service.NewChatRepository(s, quietLogger())

	msgs, err := repo.Conversation("", model.LanguageEN)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(msgs) != 1 || !reflect.DeepEqual(msgs[0], service.Greeting(model.LanguageEN)) {
		t.Fatalf("expected greeting only, got %+v", msgs)
	}
	if _, ok, _ := s.Get(store.KeyChatSessions); ok {
		t.Fatalf("greeting must not be persisted")
	}

	created, _ := repo.CreateSession("Halo", "Hai")
	msgs, err = repo.Conversation(created.ID, model.LanguageID)
	if err != nil {
		t.Fatalf("conversation for session: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Text != "Halo" {
		t.Fatalf("expected stored transcript, got %+v", msgs)
	}

	if err := repo.ClearAll(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	sessions, _ := repo.ListSessions()
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions after clear, got %d", len(sessions))
	}
	if got, _ := repo.Session(created.ID); got != nil {
		t.Fatalf("expected cleared session to be gone")
	}
}
