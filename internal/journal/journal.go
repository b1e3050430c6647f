// ABOUTME: Journal package for logging all protocol traffic to SQLite
// ABOUTME: Provides message logging, session tracking, and query capabilities

package journal

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

type Journal struct {
	conn *sql.DB
}

type MessageDirection string

const (
	DirectionClientToService    MessageDirection = "client_to_service"
	DirectionServiceToClient    MessageDirection = "service_to_client"
	DirectionServerToSubscriber MessageDirection = "server_to_subscriber"
	DirectionSubscriberToServer MessageDirection = "subscriber_to_server"
)

// SessionKind distinguishes control-plane sessions from subscriber ones.
type SessionKind string

const (
	KindControl    SessionKind = "control"
	KindSubscriber SessionKind = "subscriber"
)

// Open opens or creates the SQLite journal
func Open(path string) (*Journal, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Journal{conn: conn}, nil
}

// Close closes the journal
func (j *Journal) Close() error {
	if j.conn != nil {
		return j.conn.Close()
	}
	return nil
}

// CreateSession records a new connection session
func (j *Journal) CreateSession(sessionID string, kind SessionKind, peerAddress string) error {
	_, err := j.conn.Exec(
		"INSERT INTO sessions (id, kind, peer_address) VALUES (?, ?, ?)",
		sessionID, kind, peerAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// CloseSession marks a session as closed
func (j *Journal) CloseSession(sessionID string) error {
	_, err := j.conn.Exec(
		"UPDATE sessions SET closed_at = CURRENT_TIMESTAMP WHERE id = ?",
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

// LogMessage logs one wire message with direction and parsed details.
// Classification mirrors the wire protocol: a method key makes the
// message a request (a notification when the id is missing), a
// result or error key makes it a response.
func (j *Journal) LogMessage(sessionID string, direction MessageDirection, rawMessage []byte) error {
	var messageType, method, correlationID string

	var msg map[string]json.RawMessage
	if err := json.Unmarshal(rawMessage, &msg); err == nil {
		if rawMethod, hasMethod := msg["method"]; hasMethod {
			if _, hasID := msg["id"]; hasID {
				messageType = "request"
			} else {
				messageType = "notification"
			}
			_ = json.Unmarshal(rawMethod, &method)
		} else if _, hasResult := msg["result"]; hasResult {
			messageType = "response"
		} else if _, hasError := msg["error"]; hasError {
			messageType = "response"
		}

		if rawID, ok := msg["id"]; ok {
			_ = json.Unmarshal(rawID, &correlationID)
		}
	}

	_, err := j.conn.Exec(
		`INSERT INTO messages (session_id, direction, message_type, method, correlation_id, raw_message)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, direction, messageType, method, correlationID, string(rawMessage),
	)
	if err != nil {
		return fmt.Errorf("failed to log message: %w", err)
	}
	return nil
}

// Message represents a logged message
type Message struct {
	ID            int64
	SessionID     string
	Direction     MessageDirection
	MessageType   string
	Method        string
	CorrelationID string
	RawMessage    string
	Timestamp     time.Time
}

// GetSessionMessages retrieves all messages for a session
func (j *Journal) GetSessionMessages(sessionID string) ([]Message, error) {
	rows, err := j.conn.Query(
		`SELECT id, session_id, direction, message_type, method, correlation_id, raw_message, timestamp
		 FROM messages WHERE session_id = ? ORDER BY timestamp ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var messageType, method, correlationID sql.NullString

		err := rows.Scan(&m.ID, &m.SessionID, &m.Direction, &messageType, &method, &correlationID, &m.RawMessage, &m.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		m.MessageType = messageType.String
		m.Method = method.String
		m.CorrelationID = correlationID.String
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

// Session represents a logged session
type Session struct {
	ID          string
	Kind        SessionKind
	PeerAddress string
	CreatedAt   time.Time
	ClosedAt    *time.Time
}

// GetAllSessions retrieves all sessions, newest first
func (j *Journal) GetAllSessions() ([]Session, error) {
	rows, err := j.conn.Query(
		`SELECT id, kind, peer_address, created_at, closed_at
		 FROM sessions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var closedAt sql.NullTime

		if err := rows.Scan(&s.ID, &s.Kind, &s.PeerAddress, &s.CreatedAt, &closedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if closedAt.Valid {
			s.ClosedAt = &closedAt.Time
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}
