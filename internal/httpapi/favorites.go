package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"favtunes/internal/app/favorites"
	"favtunes/internal/models"
)

type favoritesResponse struct {
	Success   bool              `json:"success"`
	Favorites []models.Favorite `json:"favorites"`
}

type favoriteResponse struct {
	Success  bool            `json:"success"`
	Favorite models.Favorite `json:"favorite"`
}

// handleListFavorites handles GET /api/v1/favorites
func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.favorites.List(r.Context(), s.identity(r))
	if err != nil {
		writeError(w, err, favorites.FetchError)
		return
	}
	if favs == nil {
		favs = []models.Favorite{}
	}
	writeJSON(w, http.StatusOK, favoritesResponse{Success: true, Favorites: favs})
}

// handleAddFavorite handles POST /api/v1/favorites
func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	id := s.identity(r)
	if id.Anonymous() {
		writeError(w, errUnauthorized, "")
		return
	}

	var req models.FavoriteInput
	if !decodeJSON(w, r, &req) {
		return
	}

	fav, err := s.favorites.Add(r.Context(), id, req)
	if err != nil {
		writeError(w, err, favorites.AddError)
		return
	}
	writeJSON(w, http.StatusCreated, favoriteResponse{Success: true, Favorite: fav})
}

// handleDeleteFavorite handles DELETE /api/v1/favorites/{id}
func (s *Server) handleDeleteFavorite(w http.ResponseWriter, r *http.Request) {
	favoriteID := mux.Vars(r)["id"]

	if err := s.favorites.Delete(r.Context(), s.identity(r), favoriteID); err != nil {
		writeError(w, err, favorites.DeleteError)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{Success: true})
}
