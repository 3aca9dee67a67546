package model

import "time"

// CollectionChange records one whole-collection replace.
type CollectionChange struct {
	ParentID  string        `json:"parentId"`
	Key       CollectionKey `json:"key"`
	Version   int64         `json:"version"`
	ItemCount int           `json:"itemCount"`
	Actor     string        `json:"actor,omitempty"`
	At        time.Time     `json:"at"`
	// StreamID is the change-history position; empty until stored.
	StreamID string `json:"streamId,omitempty"`
}

// NotificationRequest is a record submitted for outbound notification (mail relay).
type NotificationRequest struct {
	ID        string            `json:"id"`
	Channel   string            `json:"channel"`
	Subject   string            `json:"subject"`
	Recipient string            `json:"recipient,omitempty"`
	Fields    map[string]string `json:"fields"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NotificationReceipt is the only contract with the outbound channel: accepted or not.
type NotificationReceipt struct {
	ID       string `json:"id"`
	Accepted bool   `json:"accepted"`
}

// Asset is an uploaded file kept in object storage.
type Asset struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	UploadedAt  time.Time `json:"uploadedAt"`
}
