package models

import "time"

// Review is one user's rating of one book. The (BookID, UserID) pair is
// unique, so a user holds at most one review per book.
type Review struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BookID    string    `json:"bookId" gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_book_user"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_book_user"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment,omitempty"`
	Book      *Book     `json:"-" gorm:"foreignKey:BookID"`
	User      *User     `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
