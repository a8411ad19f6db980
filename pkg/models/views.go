package models

// ThreadSummary is the wire shape for thread listings. The "participant"
// fields describe the other party from the caller's point of view.
type ThreadSummary struct {
	ID              string `json:"id"`
	ParticipantName string `json:"participantName"`
	ParticipantID   string `json:"participantId"`
	ParticipantRole string `json:"participantRole"`
	// LastMessageTime is the last message's creation time, or the thread's
	// own updated time when the log is empty.
	LastMessageTime int64   `json:"lastMessageTime"`
	LastMessage     *string `json:"lastMessage"`
	UnreadCount     int     `json:"unreadCount"`
	Avatar          string  `json:"avatar,omitempty"`
}

// MessageView is the wire shape for messages with the sender identity
// resolved and the attachment flattened.
type MessageView struct {
	ID             string    `json:"id"`
	Sender         string    `json:"sender"`
	SenderName     string    `json:"senderName"`
	SenderRole     string    `json:"senderRole"`
	Content        string    `json:"content"`
	Timestamp      int64     `json:"timestamp"`
	IsEdited       bool      `json:"isEdited"`
	IsRead         bool      `json:"isRead"`
	AttachmentType string    `json:"attachmentType,omitempty"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	Location       *GeoPoint `json:"location,omitempty"`
	DocumentURL    string    `json:"documentUrl,omitempty"`
}

// ViewOf builds a MessageView for a message with its sender resolved.
func ViewOf(m Message, sender Identity) MessageView {
	v := MessageView{
		ID:         m.ID,
		Sender:     m.Sender,
		SenderName: sender.Name,
		SenderRole: sender.Role,
		Content:    m.Content,
		Timestamp:  m.CreatedTS,
		IsEdited:   m.IsEdited,
		IsRead:     m.IsRead,
	}
	if a := m.Attachment; a != nil {
		v.AttachmentType = a.Kind
		switch a.Kind {
		case AttachmentImage:
			v.ImageURL = a.ImageURL
		case AttachmentLocation:
			v.Location = a.Location
		case AttachmentDocument:
			v.DocumentURL = a.DocumentURL
		}
	}
	return v
}
