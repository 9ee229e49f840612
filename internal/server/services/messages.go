package services

import (
	"context"
	"database/sql"
	"unicode/utf8"

	"github.com/dmitrijs2005/warbler/internal/common"
	"github.com/dmitrijs2005/warbler/internal/server/models"
	"github.com/dmitrijs2005/warbler/internal/server/repositories/repomanager"
)

const maxMessageLength = 140

// MessageService posts messages so that likes have something to point at.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager) *MessageService {
	return &MessageService{db: db, repomanager: m}
}

func (s *MessageService) Post(ctx context.Context, userID int64, text string) (*models.Message, error) {
	if n := utf8.RuneCountInString(text); n == 0 || n > maxMessageLength {
		return nil, common.ErrorInvalidMessage
	}
	return s.repomanager.Messages(s.db).Create(ctx, &models.Message{UserID: userID, Text: text})
}
