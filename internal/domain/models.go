// Package domain defines the persistence models for users, topics,
// conversations, and messages. These types are mapped with GORM and form
// the core data layer of the tutoring application.
package domain

import "time"

// User represents a registered account. Accounts are created at registration
// and never deleted by the system; only the admin flag may change afterwards.
//
// Fields:
//   - ID: auto-incrementing primary key.
//   - Username / Email: unique, case-preserved identifiers (lookups are
//     case-insensitive at the repository layer).
//   - PasswordHash: bcrypt hash; never serialized to JSON.
//   - IsAdmin: grants access to the analytics endpoints.
type User struct {
	ID           uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	Username     string    `json:"username"   gorm:"type:varchar(64);not null;uniqueIndex"`
	Email        string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string    `json:"-"          gorm:"column:password;type:varchar(255);not null"`
	IsAdmin      bool      `json:"is_admin"   gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Topic is a system prompt: a fixed instruction template that seeds the
// assistant's persona for one practice area. Topics are created once at
// startup and are read-only at runtime.
//
// Prompt holds the system instructions handed to the model capability;
// the remaining fields are display metadata for the catalog listing.
type Topic struct {
	ID            uint   `json:"id"             gorm:"primaryKey;autoIncrement"`
	Title         string `json:"title"          gorm:"type:varchar(255);not null"`
	Prompt        string `json:"prompt"         gorm:"type:text;not null"`
	Description   string `json:"description"    gorm:"type:text;not null"`
	Icon          string `json:"icon"           gorm:"type:varchar(64);not null"`
	Badge         string `json:"badge,omitempty"          gorm:"type:varchar(32)"`
	BadgeColor    string `json:"badge_color,omitempty"    gorm:"type:varchar(32)"`
	PracticeCount string `json:"practice_count,omitempty" gorm:"type:varchar(64)"`
}

// TableName returns the database table name for Topic.
func (Topic) TableName() string { return "topics" }

// Conversation is a single threaded exchange between one user and the
// assistant under one topic and one model. Rows are immutable after creation:
// starting over simply inserts a new conversation, implicitly retiring the
// previous one as non-active. The "active" conversation for a (user, topic)
// pair is the one with the greatest creation timestamp (ties by id).
//
// Model is fixed at creation by the selection policy and reused for every
// reply in the conversation.
type Conversation struct {
	ID        uint      `json:"id"        gorm:"primaryKey;autoIncrement"`
	UserID    uint      `json:"user_id"   gorm:"not null;index:idx_user_topic,priority:1"`
	TopicID   uint      `json:"topic_id"  gorm:"not null;index:idx_user_topic,priority:2"`
	Model     string    `json:"model"     gorm:"type:varchar(64);not null"`
	CreatedAt time.Time `json:"created_at"`

	User  User  `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Topic Topic `json:"-" gorm:"foreignKey:TopicID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Conversation.
func (Conversation) TableName() string { return "conversations" }

// Message is a single utterance within a conversation, authored either by
// the user or the assistant. Messages are append-only: never mutated, never
// deleted. History reads order by (created_at, id) ascending so ordering is
// stable even when timestamps collide.
//
// ResponseID is the opaque continuation token returned by the model
// capability for assistant turns; the most recent stored token is forwarded
// on the next capability call so model-side context can be resumed.
type Message struct {
	ID             uint      `json:"id"              gorm:"primaryKey;autoIncrement"`
	ConversationID uint      `json:"conversation_id" gorm:"not null;index:idx_conv_msgs,priority:1"`
	Role           Role      `json:"role"            gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Content        string    `json:"content"         gorm:"type:text;not null"`
	ResponseID     string    `json:"response_id,omitempty" gorm:"type:varchar(128)"`
	CreatedAt      time.Time `json:"created_at"      gorm:"index:idx_conv_msgs,priority:2"`

	// Conversation is the parent thread. Messages are cascade-deleted if
	// their conversation is removed.
	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }
