// Package telegram conecta o bot a um chat do Telegram: comandos chegam
// por long polling e os anúncios vão para um chat fixo.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/radieske/esports-bet-bot/internal/bot"
)

// Intervalo mínimo entre envios para não estourar o limite de ~30 msgs/min.
const sendInterval = 2 * time.Second

// maxMessageLen é o limite de caracteres de uma mensagem do Telegram.
const maxMessageLen = 4096

// Handler é satisfeito por *bot.App.
type Handler interface {
	ProcessMessage(ctx context.Context, m bot.Message) (string, bool)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Gateway struct {
	api            *tgbotapi.BotAPI
	sender         sender
	announceChatID int64
	limiter        *rate.Limiter
	updateTimeout  int
	log            *zap.Logger
}

// New autentica o token. announceChatID zero desliga os anúncios.
func New(token string, announceChatID int64, log *zap.Logger) (*Gateway, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	api.Debug = false
	log.Info("telegram authorized", zap.String("account", api.Self.UserName))
	return &Gateway{
		api:            api,
		sender:         api,
		announceChatID: announceChatID,
		limiter:        rate.NewLimiter(rate.Every(sendInterval), 1),
		updateTimeout:  60,
		log:            log,
	}, nil
}

// Run consome updates até ctx terminar. Cada mensagem é tratada em ordem.
func (g *Gateway) Run(ctx context.Context, h Handler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = g.updateTimeout
	updates := g.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			g.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			g.handle(ctx, h, update)
		}
	}
}

func (g *Gateway) handle(ctx context.Context, h Handler, update tgbotapi.Update) {
	m, ok := toMessage(update.Message)
	if !ok {
		return
	}
	reply, ok := h.ProcessMessage(ctx, m)
	if !ok || reply == "" {
		return
	}
	if err := g.send(ctx, update.Message.Chat.ID, update.Message.MessageID, reply); err != nil {
		g.log.Warn("telegram reply failed", zap.String("player_id", m.AuthorID), zap.Error(err))
	}
}

// Announce implementa bot.Announcer.
func (g *Gateway) Announce(ctx context.Context, text string) error {
	if g.announceChatID == 0 {
		return nil
	}
	return g.send(ctx, g.announceChatID, 0, text)
}

// Send envia text ao chat, quebrando mensagens longas.
func (g *Gateway) Send(ctx context.Context, chatID int64, text string) error {
	return g.send(ctx, chatID, 0, text)
}

func (g *Gateway) send(ctx context.Context, chatID int64, replyTo int, text string) error {
	for _, part := range splitText(text, maxMessageLen) {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ReplyToMessageID = replyTo
		if _, err := g.sender.Send(msg); err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
	}
	return nil
}

// toMessage ignora mensagens sem texto ou sem autor (posts de canal).
func toMessage(m *tgbotapi.Message) (bot.Message, bool) {
	if m == nil || m.From == nil || m.Chat == nil || strings.TrimSpace(m.Text) == "" {
		return bot.Message{}, false
	}
	return bot.Message{
		AuthorID:   strconv.FormatInt(m.From.ID, 10),
		AuthorName: displayName(m.From),
		ChannelRef: strconv.FormatInt(m.Chat.ID, 10),
		Text:       m.Text,
	}, true
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return strconv.FormatInt(u.ID, 10)
	}
	return name
}

// runeCut devolve o maior índice <= limit que não corta um caractere UTF-8.
func runeCut(s string, limit int) int {
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return limit
	}
	return cut
}

// splitText quebra em linhas inteiras sempre que possível. limit é em bytes.
func splitText(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if cur.Len() > 0 {
				parts = append(parts, strings.TrimSuffix(cur.String(), "\n"))
				cur.Reset()
			}
			cut := runeCut(line, limit)
			parts = append(parts, line[:cut])
			line = line[cut:]
		}
		if cur.Len()+len(line) > limit {
			parts = append(parts, strings.TrimSuffix(cur.String(), "\n"))
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		parts = append(parts, strings.TrimSuffix(cur.String(), "\n"))
	}
	return parts
}
