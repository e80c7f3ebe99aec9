package services

import (
	"context"
	"strings"

	"kotoba-server/internal/domain/chat"
	"kotoba-server/internal/metrics"
	"kotoba-server/internal/repository"
	"kotoba-server/internal/transport/httpdto"
	kotoba_errors "kotoba-server/pkg/errors"
	"kotoba-server/pkg/logger"

	"github.com/google/uuid"
)

const (
	recentChatLimit = 20
	historyLimit    = 50
)

// UnknownParticipantID marks a chat row whose counterpart could not be
// resolved (deleted user, corrupt participant data). Returned explicitly
// instead of guessing an arbitrary participant.
const UnknownParticipantID = "unknown"

type ChatService struct {
	chats  repository.ChatRepository
	users  repository.UserRepository
	pusher Pusher
	log    *logger.Logger
}

func NewChatService(chats repository.ChatRepository, users repository.UserRepository, pusher Pusher, log *logger.Logger) *ChatService {
	return &ChatService{chats: chats, users: users, pusher: pusher, log: log}
}

// SendMessage resolves the pair's chat, persists the message and fans it out.
// Persistence strictly precedes delivery, so any single recipient sees a
// chat's messages in creation order.
func (s *ChatService) SendMessage(ctx context.Context, senderID, receiverID uuid.UUID, text string) (httpdto.MessageView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		return httpdto.MessageView{}, kotoba_errors.ErrInvalidInput
	}
	if senderID == receiverID {
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		return httpdto.MessageView{}, kotoba_errors.ErrInvalidInput
	}

	c, err := s.chats.GetOrCreateDirect(ctx, senderID, receiverID)
	if err != nil {
		return httpdto.MessageView{}, err
	}

	msg := &chat.Message{
		ID:       uuid.New(),
		ChatID:   c.ID,
		SenderID: senderID,
		Body:     text,
	}
	if err := s.chats.AppendMessage(ctx, msg); err != nil {
		return httpdto.MessageView{}, err
	}
	metrics.MessagesTotal.WithLabelValues("sent").Inc()

	view := httpdto.MessageView{
		ID:        msg.ID.String(),
		ChatID:    c.ID.String(),
		Message:   msg.Body,
		CreatedAt: msg.CreatedAt,
		Sender:    httpdto.ChatUser{ID: senderID.String()},
	}
	if sender, err := s.users.GetByID(ctx, senderID); err == nil {
		view.Sender.Name = sender.Name
		view.Sender.Email = sender.Email
		view.Sender.AvatarURL = sender.AvatarURL
	} else {
		s.log.Warnf("send message: resolve sender %s: %v", senderID, err)
	}

	participants := []uuid.UUID{senderID, receiverID}
	s.pusher.DeliverMessage(c.ID, participants, view)

	// Online participants get their recent-chat list refreshed in place;
	// offline ones pick the message up on their next pull.
	for _, id := range participants {
		if !s.pusher.IsOnline(id) {
			continue
		}
		rows, err := s.RecentChats(ctx, id)
		if err != nil {
			s.log.Warnf("send message: refresh recent chats for %s: %v", id, err)
			continue
		}
		s.pusher.PushRecentChats(id, rows)
	}

	return view, nil
}

// RecentChats rebuilds the viewer's conversation list, newest activity first.
// Always a fresh query; there is no cache to invalidate.
func (s *ChatService) RecentChats(ctx context.Context, viewerID uuid.UUID) ([]httpdto.RecentChatView, error) {
	summaries, err := s.chats.GetRecentChats(ctx, viewerID, recentChatLimit)
	if err != nil {
		return nil, err
	}

	views := make([]httpdto.RecentChatView, 0, len(summaries))
	for _, sum := range summaries {
		// A chat with oneself is never served, whatever legacy data says.
		if sum.OtherID != nil && *sum.OtherID == viewerID {
			continue
		}
		preview := sum.LastMessage
		if preview == "" {
			preview = "Start the conversation"
		}
		views = append(views, httpdto.RecentChatView{
			ChatID:        sum.ChatID.String(),
			User:          otherParticipant(sum),
			Preview:       preview,
			LastMessageAt: sum.LastActivityAt,
			UnreadCount:   sum.UnreadCount,
		})
	}
	return views, nil
}

// History returns the last messages between the viewer and receiver, oldest
// first, creating the chat if it does not exist yet. The viewer's unread
// counter for the chat is reset as a side effect.
func (s *ChatService) History(ctx context.Context, viewerID, receiverID uuid.UUID) ([]httpdto.MessageView, error) {
	if viewerID == receiverID {
		return nil, kotoba_errors.ErrInvalidInput
	}

	c, err := s.chats.GetOrCreateDirect(ctx, viewerID, receiverID)
	if err != nil {
		return nil, err
	}

	if err := s.chats.ResetUnread(ctx, c.ID, viewerID); err != nil {
		s.log.Warnf("history: reset unread for %s: %v", viewerID, err)
	}

	messages, err := s.chats.GetMessages(ctx, c.ID, historyLimit, nil)
	if err != nil {
		return nil, err
	}

	views := make([]httpdto.MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, httpdto.MessageView{
			ID:        m.ID.String(),
			ChatID:    m.ChatID.String(),
			Message:   m.Body,
			CreatedAt: m.CreatedAt,
			Sender: httpdto.ChatUser{
				ID:        m.SenderID.String(),
				Name:      m.SenderName,
				Email:     m.SenderEmail,
				AvatarURL: m.SenderAvatarURL,
			},
			IsMine: m.SenderID == viewerID,
		})
	}
	return views, nil
}

// ChatIDs lists the chats the user participates in, for room subscriptions.
func (s *ChatService) ChatIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.chats.GetUserChatIDs(ctx, userID)
}

// otherParticipant is total: a summary with no resolvable counterpart maps to
// the unknown-participant sentinel rather than an arbitrary pick.
func otherParticipant(s chat.Summary) httpdto.ChatUser {
	if s.OtherID == nil {
		return httpdto.ChatUser{ID: UnknownParticipantID, Name: "Unknown user"}
	}
	return httpdto.ChatUser{
		ID:        s.OtherID.String(),
		Name:      s.OtherName,
		Email:     s.OtherEmail,
		AvatarURL: s.OtherAvatarURL,
	}
}
