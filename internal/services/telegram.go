package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/example/tiryaq/internal/models"
)

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramService posts admin notifications to a Telegram chat.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
}

// NewTelegramService creates a new TelegramService. An empty token or chat
// turns every call into a no-op.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     defaultTelegramAPI,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL points the service at a different Bot API host.
func (s *TelegramService) WithBaseURL(baseURL string) *TelegramService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// Enabled reports whether both token and chat are configured.
func (s *TelegramService) Enabled() bool {
	return s.botToken != "" && s.adminChatID != ""
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// NotifyPendingApproval tells the admin chat that a pharmacy or driver
// account is waiting for approval.
func (s *TelegramService) NotifyPendingApproval(ctx context.Context, user models.PublicUser) error {
	if !s.Enabled() {
		log.Debug().Msg("telegram not configured, skipping approval notification")
		return nil
	}

	contact := user.Email
	if contact == "" {
		contact = user.Phone
	}

	message := fmt.Sprintf(`<b>New %s awaiting approval</b>
<b>Name:</b> %s
<b>Contact:</b> %s
<b>ID:</b> <code>%s</code>`,
		html.EscapeString(string(user.Role)),
		html.EscapeString(user.Name),
		html.EscapeString(contact),
		user.ID,
	)

	return s.SendMessage(ctx, s.adminChatID, message)
}
