package models

import "time"

// ChatRole is the closed set of chat participants. Citizens receive
// notifications but are not chat participants.
type ChatRole string

const (
	RoleAdmin ChatRole = "Admin"
	RoleStaff ChatRole = "Staff"
)

func (r ChatRole) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

type MessageType string

const (
	MsgText  MessageType = "text"
	MsgImage MessageType = "image"
	MsgFile  MessageType = "file"
)

func (t MessageType) Valid() bool {
	return t == MsgText || t == MsgImage || t == MsgFile
}

// Actor is one side of a soft delete.
type Actor struct {
	ID   string   `bson:"id" json:"id"`
	Role ChatRole `bson:"role" json:"role"`
}

type ChatMessage struct {
	ID             string      `bson:"_id,omitempty" json:"id"`
	ConversationID string      `bson:"conversation_id" json:"conversation_id"`
	SenderID       string      `bson:"sender_id" json:"sender_id"`
	SenderRole     ChatRole    `bson:"sender_role" json:"sender_role"`
	ReceiverID     string      `bson:"receiver_id" json:"receiver_id"`
	ReceiverRole   ChatRole    `bson:"receiver_role" json:"receiver_role"`
	ComplaintID    string      `bson:"complaint_id,omitempty" json:"complaint_id,omitempty"`
	Body           string      `bson:"body" json:"body"`
	MessageType    MessageType `bson:"message_type" json:"message_type"`
	FileURL        string      `bson:"file_url,omitempty" json:"file_url,omitempty"`
	IsRead         bool        `bson:"is_read" json:"is_read"`
	IsEdited       bool        `bson:"is_edited" json:"is_edited"`
	DeletedBy      []Actor     `bson:"deleted_by,omitempty" json:"deleted_by,omitempty"`
	CreatedAt      time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `bson:"updated_at" json:"updated_at"`
}

// DeletedFor reports whether the given actor soft-deleted this message.
// Soft delete is per-viewer: the other party's view is untouched.
func (m *ChatMessage) DeletedFor(actorID string) bool {
	for _, a := range m.DeletedBy {
		if a.ID == actorID {
			return true
		}
	}
	return false
}
