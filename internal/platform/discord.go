package platform

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"sambot/internal/jobs"
	"sambot/internal/models"
)

// DiscordAdapter bridges the Discord gateway and the cognition handler.
// Each incoming message is dispatched on its own goroutine.
type DiscordAdapter struct {
	session *discordgo.Session
	handler Handler
	buffer  *jobs.LogBuffer
}

func NewDiscordAdapter(token string, handler Handler, buffer *jobs.LogBuffer) (*DiscordAdapter, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMessageReactions

	a := &DiscordAdapter{session: session, handler: handler, buffer: buffer}
	session.AddHandler(a.onMessageCreate)
	return a, nil
}

// Open connects to the gateway.
func (a *DiscordAdapter) Open() error {
	if err := a.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	log.Printf("🤖 [DISCORD] Conectado como %s", a.session.State.User.Username)
	return nil
}

// Close disconnects from the gateway.
func (a *DiscordAdapter) Close() error {
	return a.session.Close()
}

func (a *DiscordAdapter) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}

	botID := s.State.User.ID

	mentionsBot := false
	for _, user := range m.Mentions {
		if user.ID == botID {
			mentionsBot = true
			break
		}
	}

	isReplyToBot := m.ReferencedMessage != nil &&
		m.ReferencedMessage.Author != nil &&
		m.ReferencedMessage.Author.ID == botID

	content := strings.ReplaceAll(m.Content, fmt.Sprintf("<@%s>", botID), "")
	content = strings.TrimSpace(strings.ReplaceAll(content, fmt.Sprintf("<@!%s>", botID), ""))

	displayName := m.Author.Username
	if m.Member != nil && m.Member.Nick != "" {
		displayName = m.Member.Nick
	}

	if a.buffer != nil && content != "" {
		a.buffer.Record(fmt.Sprintf("%s (%s): %s", displayName, m.Author.ID, content))
	}

	msg := models.Message{
		ID:           m.ID,
		ChannelID:    m.ChannelID,
		AuthorID:     m.Author.ID,
		AuthorName:   displayName,
		Content:      content,
		IsDM:         m.GuildID == "",
		MentionsBot:  mentionsBot,
		IsReplyToBot: isReplyToBot,
	}

	conv := &discordConversation{session: s, message: m.Message}

	go func() {
		if err := s.ChannelTyping(m.ChannelID); err != nil {
			log.Printf("⚠️ [DISCORD] Falha no indicador de digitação: %v", err)
		}
		a.handler.HandleMessage(context.Background(), msg, conv)
	}()
}

// discordConversation answers within the channel of the originating message.
type discordConversation struct {
	session *discordgo.Session
	message *discordgo.Message
}

func (c *discordConversation) History(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	msgs, err := c.session.ChannelMessages(c.message.ChannelID, limit, c.message.ID, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel history: %w", err)
	}

	botID := c.session.State.User.ID

	// Discord returns newest first; the pipeline wants oldest first.
	entries := make([]models.HistoryEntry, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.Author == nil || m.Content == "" {
			continue
		}
		entries = append(entries, models.HistoryEntry{
			AuthorName: m.Author.Username,
			Content:    m.Content,
			FromBot:    m.Author.ID == botID,
		})
	}
	return entries, nil
}

func (c *discordConversation) Reply(ctx context.Context, text string) error {
	_, err := c.session.ChannelMessageSendReply(c.message.ChannelID, text, c.message.Reference())
	if err != nil {
		return fmt.Errorf("failed to reply: %w", err)
	}
	return nil
}

func (c *discordConversation) Send(ctx context.Context, text string) error {
	_, err := c.session.ChannelMessageSend(c.message.ChannelID, text)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (c *discordConversation) React(ctx context.Context, emoji string) error {
	if err := c.session.MessageReactionAdd(c.message.ChannelID, c.message.ID, emoji); err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	return nil
}
