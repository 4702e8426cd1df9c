package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"favtunes/internal/models"
)

// CreateFavorite inserts a favorite and returns the stored record.
func (s *Store) CreateFavorite(ctx context.Context, fav models.Favorite) (models.Favorite, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO favorites (id, user_id, song_name, artist, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, song_name, artist, created_at`,
		fav.ID, fav.UserID, fav.SongName, fav.Artist, fav.CreatedAt,
	).Scan(&fav.ID, &fav.UserID, &fav.SongName, &fav.Artist, &fav.CreatedAt)
	if err != nil {
		return models.Favorite{}, fmt.Errorf("insert favorite: %w", err)
	}
	return fav, nil
}

// FavoriteByID returns a single favorite regardless of owner.
func (s *Store) FavoriteByID(ctx context.Context, id string) (models.Favorite, error) {
	var fav models.Favorite
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, song_name, artist, created_at
		FROM favorites
		WHERE id = $1`, id,
	).Scan(&fav.ID, &fav.UserID, &fav.SongName, &fav.Artist, &fav.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Favorite{}, ErrFavoriteNotFound
	}
	if err != nil {
		return models.Favorite{}, fmt.Errorf("get favorite: %w", err)
	}
	return fav, nil
}

// FavoritesByOwner returns every favorite owned by the user. Callers must not
// rely on the row order.
func (s *Store) FavoritesByOwner(ctx context.Context, ownerID string) ([]models.Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, song_name, artist, created_at
		FROM favorites
		WHERE user_id = $1`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []models.Favorite{}
	for rows.Next() {
		var fav models.Favorite
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.SongName, &fav.Artist, &fav.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}

	return favorites, nil
}

// DeleteFavorite removes the favorite only if it still exists and belongs to
// ownerID. Of two concurrent deletes exactly one sees a row affected; the
// other gets ErrFavoriteNotFound.
func (s *Store) DeleteFavorite(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM favorites
		WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}
