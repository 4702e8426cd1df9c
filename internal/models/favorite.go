package models

import "time"

// Favorite is a song a user has saved to their list.
type Favorite struct {
	ID        string    `json:"id" db:"id"`
	SongName  string    `json:"songName" db:"song_name"`
	Artist    string    `json:"artist" db:"artist"`
	UserID    string    `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// FavoriteInput carries the user supplied fields for a new favorite.
type FavoriteInput struct {
	SongName string `json:"songName" validate:"required"`
	Artist   string `json:"artist" validate:"required"`
}
