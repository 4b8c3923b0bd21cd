// Package conversation persists the per-session message log in Postgres.
package conversation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

type messageRow struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID        int64          `bun:"id,pk,autoincrement"`
	SessionID string         `bun:"session_id,notnull"`
	StoreID   string         `bun:"store_id,notnull"`
	UserID    sql.NullString `bun:"user_id"`
	Role      string         `bun:"role,notnull"`
	Content   string         `bun:"content,notnull"`
	Timestamp time.Time      `bun:"timestamp,notnull"`
}

// Store is the bun-backed ConversationStore. The log is append-only; rows
// are never updated.
type Store struct {
	db  bun.IDB
	now func() time.Time
}

var _ contractx.ConversationStore = (*Store)(nil)

func NewStore(db bun.IDB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Append(ctx context.Context, msg contractx.Message) (contractx.Message, error) {
	row := messageRow{
		SessionID: msg.SessionID,
		StoreID:   msg.StoreID,
		UserID:    sql.NullString{String: msg.UserID, Valid: msg.UserID != ""},
		Role:      msg.Role,
		Content:   msg.Content,
		Timestamp: s.now().UTC(),
	}

	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return contractx.Message{}, fmt.Errorf("%w: append message: %v", contractx.ErrPersistence, err)
	}

	msg.ID = row.ID
	msg.Timestamp = row.Timestamp
	return msg, nil
}

// Read returns up to limit of the session's most recent messages, oldest
// first. Reads are scoped by store id so a colliding session id can never
// surface another tenant's history.
func (s *Store) Read(ctx context.Context, sessionID, storeID string, limit int) ([]contractx.Message, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []messageRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("session_id = ?", sessionID).
		Where("store_id = ?", storeID).
		OrderExpr("timestamp DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read history: %v", contractx.ErrPersistence, err)
	}

	msgs := make([]contractx.Message, len(rows))
	for i, row := range rows {
		// Reverse the DESC page back into chronological order.
		msgs[len(rows)-1-i] = contractx.Message{
			ID:        row.ID,
			SessionID: row.SessionID,
			StoreID:   row.StoreID,
			UserID:    row.UserID.String,
			Role:      row.Role,
			Content:   row.Content,
			Timestamp: row.Timestamp,
		}
	}
	return msgs, nil
}

func (s *Store) Clear(ctx context.Context, sessionID, storeID string) error {
	_, err := s.db.NewDelete().
		Model((*messageRow)(nil)).
		Where("session_id = ?", sessionID).
		Where("store_id = ?", storeID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: clear history: %v", contractx.ErrPersistence, err)
	}
	return nil
}

// Stats aggregates the dashboard counters for one store.
func (s *Store) Stats(ctx context.Context, storeID string) (contractx.ConversationStats, error) {
	var stats contractx.ConversationStats

	err := s.db.NewSelect().
		Model((*messageRow)(nil)).
		ColumnExpr("count(DISTINCT session_id)").
		Where("store_id = ?", storeID).
		Scan(ctx, &stats.TotalConversations)
	if err != nil {
		return contractx.ConversationStats{}, fmt.Errorf("%w: count conversations: %v", contractx.ErrPersistence, err)
	}

	stats.TotalMessages, err = s.db.NewSelect().
		Model((*messageRow)(nil)).
		Where("store_id = ?", storeID).
		Count(ctx)
	if err != nil {
		return contractx.ConversationStats{}, fmt.Errorf("%w: count messages: %v", contractx.ErrPersistence, err)
	}

	cutoff := s.now().UTC().Add(-24 * time.Hour)
	err = s.db.NewSelect().
		Model((*messageRow)(nil)).
		ColumnExpr("count(DISTINCT session_id)").
		Where("store_id = ?", storeID).
		Where("timestamp > ?", cutoff).
		Scan(ctx, &stats.ActiveSessions)
	if err != nil {
		return contractx.ConversationStats{}, fmt.Errorf("%w: count active sessions: %v", contractx.ErrPersistence, err)
	}

	if stats.TotalConversations > 0 {
		stats.AverageMessagesPerConversation = (stats.TotalMessages + stats.TotalConversations/2) / stats.TotalConversations
	}
	return stats, nil
}
