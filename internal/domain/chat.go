package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DateLayout is the calendar-day format stored on a ChatSession.
const DateLayout = "2006-01-02"

// ChatSession is the shared chat room window. Exactly one session is current
// at any instant: the one with the latest StartTime. Sessions are never
// mutated after creation; they are retired by archiving.
type ChatSession struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Date      string    `json:"date" gorm:"not null"`
	StartTime time.Time `json:"startTime" gorm:"not null;index"`
}

type Message struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	SenderID  uuid.UUID `json:"senderId" gorm:"type:uuid;not null;index"`
	Text      string    `json:"text" gorm:"not null"`
	SessionID uuid.UUID `json:"sessionId" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatHistory is the immutable archive record of a retired session. The
// unique index on SessionID guarantees at most one archive per session.
type ChatHistory struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	SessionID uuid.UUID      `json:"sessionId" gorm:"type:uuid;not null;uniqueIndex"`
	SavedData datatypes.JSON `json:"savedData" gorm:"type:jsonb"`
}

// ArchivedMessage is a message as frozen into an archive snapshot, with the
// sender's username resolved at archive time.
type ArchivedMessage struct {
	ID             uuid.UUID `json:"id"`
	SenderID       uuid.UUID `json:"senderId"`
	SenderUsername string    `json:"senderUsername"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
	SessionID      uuid.UUID `json:"sessionId"`
}

// ArchivedSession is the payload stored in ChatHistory.SavedData.
type ArchivedSession struct {
	Session    ChatSession       `json:"session"`
	ArchivedAt time.Time         `json:"archivedAt"`
	Messages   []ArchivedMessage `json:"messages"`
}
