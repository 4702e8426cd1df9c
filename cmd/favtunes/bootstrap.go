package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"favtunes/internal/auth"
	"favtunes/internal/models"
	"favtunes/internal/store"
)

const (
	demoEmail    = "demo@favtunes.local"
	demoPassword = "demo123"
)

var demoFavorites = []models.FavoriteInput{
	{SongName: "Bohemian Rhapsody", Artist: "Queen"},
	{SongName: "Hey Jude", Artist: "The Beatles"},
	{SongName: "Dreams", Artist: "Fleetwood Mac"},
}

func bootstrapDemoData(ctx context.Context, dataStore *store.Store) error {
	userID, created, err := ensureDemoUser(ctx, dataStore)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}
	if err := ensureDemoFavorites(ctx, dataStore, userID); err != nil {
		return err
	}
	log.Info().Str("email", demoEmail).Msg("demo account created")
	return nil
}

func ensureDemoUser(ctx context.Context, dataStore *store.Store) (string, bool, error) {
	existing, err := dataStore.UserByEmail(ctx, demoEmail)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return "", false, fmt.Errorf("lookup demo user: %w", err)
	}

	hash, err := auth.NewHasher(bcrypt.DefaultCost).Hash(demoPassword)
	if err != nil {
		return "", false, fmt.Errorf("hash demo password: %w", err)
	}
	name := "Demo"
	user, err := dataStore.CreateUser(ctx, models.User{
		ID:           uuid.NewString(),
		Name:         &name,
		Email:        demoEmail,
		PasswordHash: &hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("bootstrap demo user: %w", err)
	}
	return user.ID, true, nil
}

func ensureDemoFavorites(ctx context.Context, dataStore *store.Store, userID string) error {
	now := time.Now().UTC()
	for i, in := range demoFavorites {
		if _, err := dataStore.CreateFavorite(ctx, models.Favorite{
			ID:        uuid.NewString(),
			SongName:  in.SongName,
			Artist:    in.Artist,
			UserID:    userID,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		}); err != nil {
			return fmt.Errorf("bootstrap demo favorite: %w", err)
		}
	}
	return nil
}
