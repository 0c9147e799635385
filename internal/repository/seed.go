package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/evacreport/backend/internal/logger"
	"github.com/evacreport/backend/internal/models"
	"github.com/evacreport/backend/internal/services"
)

// SeedUser is a user entry in a seed file. Password is plain text and is
// hashed before it reaches a store.
type SeedUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// SeedData is the JSON document loaded by cmd/seed and by the memory store.
type SeedData struct {
	Incidents []models.Incident         `json:"incidents"`
	Centers   []models.EvacuationCenter `json:"centers"`
	Users     []SeedUser                `json:"users"`
}

func LoadSeedFile(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	return &data, nil
}

// HashUsers converts seed users into stored users with bcrypt hashes.
func (d *SeedData) HashUsers() ([]models.User, error) {
	users := make([]models.User, 0, len(d.Users))
	for _, u := range d.Users {
		role, ok := models.ParseUserRole(u.Role)
		if !ok {
			return nil, fmt.Errorf("user %s has unknown role %q", u.Email, u.Role)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", u.Email, err)
		}
		users = append(users, models.User{
			ID:       u.ID,
			Name:     u.Name,
			Email:    strings.ToLower(u.Email),
			Password: string(hash),
			Role:     role,
		})
	}
	return users, nil
}

// Prepare fills defaults on seeded centers so every one carries a schema and
// a full facilities map.
func (d *SeedData) Prepare(schema models.DemographicsSchema) {
	for i := range d.Centers {
		c := &d.Centers[i]
		if c.Schema == "" {
			c.Schema = schema
		}
		if c.Status == "" {
			c.Status = models.CenterActive
		}
		c.Facilities = c.Facilities.Normalize()
	}
}

// SeedResult counts what Apply wrote.
type SeedResult struct {
	Incidents int
	Centers   int
	Users     int
	Skipped   int
}

// Apply writes seed data into a store. Existing users are skipped and
// existing centers are replaced, so seeding twice is safe.
func Apply(ctx context.Context, store Store, data *SeedData, schema models.DemographicsSchema) (SeedResult, error) {
	var res SeedResult
	data.Prepare(schema)

	for _, inc := range data.Incidents {
		if err := store.UpsertIncident(ctx, inc); err != nil {
			return res, fmt.Errorf("failed to seed incident %s: %w", inc.Name, err)
		}
		res.Incidents++
	}

	for _, c := range data.Centers {
		_, err := store.CreateCenter(ctx, c)
		if errors.Is(err, services.ErrConflict) {
			_, err = store.UpdateCenter(ctx, c)
		}
		if err != nil {
			return res, fmt.Errorf("failed to seed center %s: %w", c.Name, err)
		}
		res.Centers++
	}

	users, err := data.HashUsers()
	if err != nil {
		return res, err
	}
	for _, u := range users {
		if _, err := store.CreateUser(ctx, u); err != nil {
			if errors.Is(err, services.ErrConflict) {
				logger.Warn("User already exists", map[string]interface{}{"email": u.Email})
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
		res.Users++
	}
	return res, nil
}
