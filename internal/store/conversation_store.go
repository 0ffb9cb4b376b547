package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mfcastro/juniorbot/internal/domain"
)

// timeLayout preserves sub-second ordering of appended messages.
const timeLayout = time.RFC3339Nano

// ConversationStore is the persistence collaborator the gateway core
// writes transcripts through.
type ConversationStore interface {
	// FindByPhone returns the conversation for a phone number, or nil
	// when none exists.
	FindByPhone(phone string) (*domain.Conversation, error)

	// Create inserts a new conversation, assigning ID and CreatedAt when
	// unset. The phone number is unique; creating a second conversation
	// for a known phone fails.
	Create(conv *domain.Conversation) error

	// AppendMessage adds a message to a conversation transcript. The
	// timestamp defaults to now; append order is never rewritten.
	AppendMessage(conversationID string, msg domain.Message) error

	// SetStatus updates a conversation's status.
	SetStatus(conversationID string, status domain.Status) error

	// Get returns a conversation with its full transcript, or nil.
	Get(conversationID string) (*domain.Conversation, error)

	// List returns all conversations with transcripts, newest first.
	List() ([]domain.Conversation, error)

	// Count returns the number of conversations.
	Count() (int, error)
}

// SQLiteConversationStore implements ConversationStore backed by SQLite.
type SQLiteConversationStore struct {
	db *DB
}

// NewSQLiteConversationStore creates a conversation store using the given database.
func NewSQLiteConversationStore(db *DB) *SQLiteConversationStore {
	return &SQLiteConversationStore{db: db}
}

func (s *SQLiteConversationStore) FindByPhone(phone string) (*domain.Conversation, error) {
	return s.scanOne(`SELECT id, customer, phone, status, created_at
		FROM conversations WHERE phone = ?`, phone)
}

func (s *SQLiteConversationStore) Get(conversationID string) (*domain.Conversation, error) {
	return s.scanOne(`SELECT id, customer, phone, status, created_at
		FROM conversations WHERE id = ?`, conversationID)
}

func (s *SQLiteConversationStore) scanOne(query, arg string) (*domain.Conversation, error) {
	var conv domain.Conversation
	var createdAt string

	err := s.db.sql.QueryRow(query, arg).Scan(
		&conv.ID, &conv.Customer, &conv.Phone, &conv.Status, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}

	conv.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	conv.Messages, err = s.loadMessages(conv.ID)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *SQLiteConversationStore) Create(conv *domain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	if conv.Status == "" {
		conv.Status = domain.StatusActive
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO conversations (id, customer, phone, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		conv.ID, conv.Customer, conv.Phone, conv.Status, conv.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("creating conversation for %s: %w", conv.Phone, err)
	}

	// Persist any seed messages (lead capture creates the conversation
	// with an initial bot greeting already in place).
	for _, msg := range conv.Messages {
		if err := s.AppendMessage(conv.ID, msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteConversationStore) AppendMessage(conversationID string, msg domain.Message) error {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO messages (conversation_id, sender, text, timestamp)
		 VALUES (?, ?, ?, ?)`,
		conversationID, msg.Sender, msg.Text, ts.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("appending message to %s: %w", conversationID, err)
	}
	return nil
}

func (s *SQLiteConversationStore) SetStatus(conversationID string, status domain.Status) error {
	res, err := s.db.sql.Exec(
		`UPDATE conversations SET status = ? WHERE id = ?`, status, conversationID,
	)
	if err != nil {
		return fmt.Errorf("updating status of %s: %w", conversationID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s not found", conversationID)
	}
	return nil
}

func (s *SQLiteConversationStore) List() ([]domain.Conversation, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, customer, phone, status, created_at
		 FROM conversations ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		var createdAt string
		if err := rows.Scan(&conv.ID, &conv.Customer, &conv.Phone, &conv.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		conv.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		convs = append(convs, conv)
	}

	for i := range convs {
		convs[i].Messages, err = s.loadMessages(convs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return convs, rows.Err()
}

func (s *SQLiteConversationStore) Count() (int, error) {
	var count int
	if err := s.db.sql.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting conversations: %w", err)
	}
	return count, nil
}

// loadMessages returns a transcript in append order.
func (s *SQLiteConversationStore) loadMessages(conversationID string) ([]domain.Message, error) {
	rows, err := s.db.sql.Query(
		`SELECT sender, text, timestamp
		 FROM messages WHERE conversation_id = ? ORDER BY id`, conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading messages of %s: %w", conversationID, err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var msg domain.Message
		var ts string
		if err := rows.Scan(&msg.Sender, &msg.Text, &ts); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Timestamp, _ = time.Parse(timeLayout, ts)
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
