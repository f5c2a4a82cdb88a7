package models

// User represents a user in the system
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Not serialized
	Role         string `json:"role"`
	CreatedAt    string `json:"created_at"`
}

// FaceEncoding stores the facial embedding generated by the recognition service
type FaceEncoding struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Embedding string `json:"-"` // JSON array as string, not serialized
	CreatedAt string `json:"created_at"`
}
