package models

import "time"

// Book represents a catalog entry. ISBN is globally unique; AddedBy records
// the creating user but does not restrict who may read the book.
type Book struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title           string    `json:"title" gorm:"type:varchar(255);not null"`
	Author          string    `json:"author" gorm:"type:varchar(255);not null"`
	Genre           string    `json:"genre" gorm:"type:varchar(100);not null"`
	ISBN            string    `json:"isbn" gorm:"uniqueIndex;type:varchar(32);not null"`
	PublicationYear int       `json:"publicationYear" gorm:"not null"`
	AddedByID       string    `json:"-" gorm:"type:varchar(36);not null;index"`
	AddedBy         *User     `json:"addedBy,omitempty" gorm:"foreignKey:AddedByID"`
	CreatedAt       time.Time `json:"createdAt"`
}
