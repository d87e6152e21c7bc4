package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/izzsandya6-dev/gemini-ai-health/internal/model"
	"github.com/izzsandya6-dev/gemini-ai-health/internal/store"
)

const sessionTitleRunes = 30

var (
	greetings = map[model.Language]string{
		model.LanguageEN: "1. Hi! I'm your HealthGuard Expert. 2. I can suggest over-the-counter (OTC) medicine. 3. How can I help?",
		model.LanguageID: "1. Halo! Saya Pakar HealthGuard. 2. Saya dapat menyarankan obat bebas (OTC) untuk gejala ringan. 3. Ada yang bisa saya bantu?",
	}
	clearedNotices = map[model.Language]string{
		model.LanguageEN: "All chat history cleared. How can I help you today?",
		model.LanguageID: "Semua riwayat chat telah dihapus. Ada yang bisa saya bantu?",
	}
)

// Greeting is the opening assistant message of a new conversation. It is
// shown, never stored.
func Greeting(lang model.Language) model.ChatMessage {
	return model.ChatMessage{Role: model.RoleAssistant, Text: localized(greetings, lang)}
}

func ClearedNotice(lang model.Language) model.ChatMessage {
	return model.ChatMessage{Role: model.RoleAssistant, Text: localized(clearedNotices, lang)}
}

func localized(texts map[model.Language]string, lang model.Language) string {
	if s, ok := texts[lang]; ok {
		return s
	}
	return texts[model.LanguageID]
}

// ChatRepository keeps consultation sessions newest first under one key.
// Which session is active belongs to the caller.
type ChatRepository struct {
	store store.Store
	log   *logrus.Logger
	Now   func() time.Time
}

func NewChatRepository(s store.Store, log *logrus.Logger) *ChatRepository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ChatRepository{store: s, log: log}
}

// CreateSession stores a new session holding one exchange at the front of
// the list.
func (r *ChatRepository) CreateSession(userMsg, reply string) (*model.ChatSession, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	session := model.ChatSession{
		ID:        id.String(),
		Title:     sessionTitle(userMsg),
		Messages:  exchange(userMsg, reply),
		Timestamp: model.Millis(nowFunc(r.Now)),
	}
	err = r.store.Update(store.KeyChatSessions, func(current []byte, _ bool) ([]byte, bool, error) {
		sessions, err := NormalizeChatSessions(current)
		if err != nil {
			return nil, false, err
		}
		next, err := encodeList(append([]model.ChatSession{session}, sessions...))
		return next, err == nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	r.log.WithField("session", session.ID).Debug("Chat session created")
	return &session, nil
}

// AppendToActive adds one exchange to the session activeID, or starts a new
// session when activeID is empty. An unknown id writes nothing and returns
// nil.
func (r *ChatRepository) AppendToActive(activeID, userMsg, reply string) (*model.ChatSession, error) {
	if strings.TrimSpace(activeID) == "" {
		return r.CreateSession(userMsg, reply)
	}
	var updated *model.ChatSession
	err := r.store.Update(store.KeyChatSessions, func(current []byte, _ bool) ([]byte, bool, error) {
		updated = nil
		sessions, err := NormalizeChatSessions(current)
		if err != nil {
			return nil, false, err
		}
		for i := range sessions {
			if sessions[i].ID != activeID {
				continue
			}
			messages := make([]model.ChatMessage, 0, len(sessions[i].Messages)+2)
			messages = append(messages, sessions[i].Messages...)
			sessions[i].Messages = append(messages, exchange(userMsg, reply)...)
			s := sessions[i]
			updated = &s
			next, err := encodeList(sessions)
			return next, err == nil, err
		}
		return nil, false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("append to chat session %s: %w", activeID, err)
	}
	if updated != nil {
		r.log.WithFields(logrus.Fields{"session": activeID, "messages": len(updated.Messages)}).Debug("Chat session extended")
	}
	return updated, nil
}

// ListSessions returns sessions in stored order, newest first.
func (r *ChatRepository) ListSessions() ([]model.ChatSession, error) {
	raw, _, err := r.store.Get(store.KeyChatSessions)
	if err != nil {
		return nil, fmt.Errorf("load chat sessions: %w", err)
	}
	return NormalizeChatSessions(raw)
}

// Session returns the session with id, or nil.
func (r *ChatRepository) Session(id string) (*model.ChatSession, error) {
	sessions, err := r.ListSessions()
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].ID == id {
			return &sessions[i], nil
		}
	}
	return nil, nil
}

// Conversation returns the messages to show for activeID: the stored
// transcript, or just the greeting when no session is active.
func (r *ChatRepository) Conversation(activeID string, lang model.Language) ([]model.ChatMessage, error) {
	if strings.TrimSpace(activeID) != "" {
		s, err := r.Session(activeID)
		if err != nil {
			return nil, err
		}
		if s != nil {
			return s.Messages, nil
		}
	}
	return []model.ChatMessage{Greeting(lang)}, nil
}

func (r *ChatRepository) ClearAll() error {
	if err := r.store.Set(store.KeyChatSessions, []byte("[]")); err != nil {
		return fmt.Errorf("clear chat sessions: %w", err)
	}
	r.log.Debug("Chat sessions cleared")
	return nil
}

// Replace stores sessions as the whole list, in the given order.
func (r *ChatRepository) Replace(sessions []model.ChatSession) error {
	b, err := encodeList(sessions)
	if err != nil {
		return err
	}
	if err := r.store.Set(store.KeyChatSessions, b); err != nil {
		return fmt.Errorf("save chat sessions: %w", err)
	}
	return nil
}

func exchange(userMsg, reply string) []model.ChatMessage {
	return []model.ChatMessage{
		{Role: model.RoleUser, Text: userMsg},
		{Role: model.RoleAssistant, Text: reply},
	}
}

func sessionTitle(msg string) string {
	runes := []rune(msg)
	if len(runes) > sessionTitleRunes {
		runes = runes[:sessionTitleRunes]
	}
	return string(runes)
}
