package repository

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/evacreport/backend/internal/models"
	"github.com/evacreport/backend/internal/services"
)

const (
	incidentsCollection = "incidents"
	centersCollection   = "evacuation_centers"
	draftsCollection    = "report_drafts"
	usersCollection     = "users"
)

// Field paths must match the firestore tags on the models.
const (
	incidentCentersField  = "evacuationCenters"
	incidentEvacueesField = "totalEvacuees"
	incidentUpdatedField  = "updatedAt"
	userEmailField        = "email"
)

// NewFirestoreClient builds a client from base64-encoded service account
// credentials.
func NewFirestoreClient(ctx context.Context, encodedCreds, projectID string) (*firestore.Client, error) {
	creds, err := base64.StdEncoding.DecodeString(encodedCreds)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Firestore credentials: %w", err)
	}
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}
	return client, nil
}

// FirestoreStore keeps each entity in its own collection keyed by id.
type FirestoreStore struct {
	client      *firestore.Client
	idGenerator func() string
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client, idGenerator: uuid.NewString}
}

func mapFirestoreError(err error, what string) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s: %w", what, services.ErrNotFound)
	case codes.AlreadyExists:
		return fmt.Errorf("%s: %w", what, services.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *FirestoreStore) ListIncidents(ctx context.Context) ([]models.Incident, error) {
	iter := s.client.Collection(incidentsCollection).Documents(ctx)
	defer iter.Stop()
	incidents := []models.Incident{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, mapFirestoreError(err, "list incidents")
		}
		var inc models.Incident
		if err := doc.DataTo(&inc); err != nil {
			return nil, fmt.Errorf("decode incident %s: %w", doc.Ref.ID, err)
		}
		incidents = append(incidents, inc)
	}
	sort.Slice(incidents, func(i, j int) bool { return incidents[i].Date.After(incidents[j].Date) })
	return incidents, nil
}

func (s *FirestoreStore) GetIncident(ctx context.Context, id string) (models.Incident, error) {
	var inc models.Incident
	doc, err := s.client.Collection(incidentsCollection).Doc(id).Get(ctx)
	if err != nil {
		return inc, mapFirestoreError(err, "incident "+id)
	}
	if err := doc.DataTo(&inc); err != nil {
		return inc, fmt.Errorf("decode incident %s: %w", id, err)
	}
	return inc, nil
}

func (s *FirestoreStore) UpsertIncident(ctx context.Context, inc models.Incident) error {
	if inc.ID == "" {
		inc.ID = s.idGenerator()
	}
	_, err := s.client.Collection(incidentsCollection).Doc(inc.ID).Set(ctx, inc)
	return mapFirestoreError(err, "incident "+inc.ID)
}

func (s *FirestoreStore) UpdateIncidentCounters(ctx context.Context, id string, centers, evacuees int) error {
	_, err := s.client.Collection(incidentsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: incidentCentersField, Value: centers},
		{Path: incidentEvacueesField, Value: evacuees},
		{Path: incidentUpdatedField, Value: firestore.ServerTimestamp},
	})
	return mapFirestoreError(err, "incident "+id)
}

func (s *FirestoreStore) ListCenters(ctx context.Context) ([]models.EvacuationCenter, error) {
	docs, err := s.client.Collection(centersCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapFirestoreError(err, "list centers")
	}
	centers := make([]models.EvacuationCenter, 0, len(docs))
	for _, doc := range docs {
		var c models.EvacuationCenter
		if err := doc.DataTo(&c); err != nil {
			return nil, fmt.Errorf("decode center %s: %w", doc.Ref.ID, err)
		}
		centers = append(centers, c)
	}
	sort.Slice(centers, func(i, j int) bool { return centers[i].Name < centers[j].Name })
	return centers, nil
}

func (s *FirestoreStore) GetCenter(ctx context.Context, id string) (models.EvacuationCenter, error) {
	var c models.EvacuationCenter
	doc, err := s.client.Collection(centersCollection).Doc(id).Get(ctx)
	if err != nil {
		return c, mapFirestoreError(err, "center "+id)
	}
	if err := doc.DataTo(&c); err != nil {
		return c, fmt.Errorf("decode center %s: %w", id, err)
	}
	return c, nil
}

func (s *FirestoreStore) CreateCenter(ctx context.Context, c models.EvacuationCenter) (models.EvacuationCenter, error) {
	if c.ID == "" {
		c.ID = s.idGenerator()
	}
	if _, err := s.client.Collection(centersCollection).Doc(c.ID).Create(ctx, c); err != nil {
		return models.EvacuationCenter{}, mapFirestoreError(err, "center "+c.ID)
	}
	return c, nil
}

// UpdateCenter replaces a stored center inside a transaction so a missing
// center is reported instead of created.
func (s *FirestoreStore) UpdateCenter(ctx context.Context, c models.EvacuationCenter) (models.EvacuationCenter, error) {
	ref := s.client.Collection(centersCollection).Doc(c.ID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var existing models.EvacuationCenter
		if err := doc.DataTo(&existing); err == nil {
			c.CreatedAt = existing.CreatedAt
		}
		return tx.Set(ref, c)
	})
	if err != nil {
		return models.EvacuationCenter{}, mapFirestoreError(err, "center "+c.ID)
	}
	return c, nil
}

func (s *FirestoreStore) SaveDraft(ctx context.Context, d models.StoredDraft) error {
	_, err := s.client.Collection(draftsCollection).Doc(d.SessionID).Set(ctx, d)
	return mapFirestoreError(err, "draft "+d.SessionID)
}

func (s *FirestoreStore) LoadDraft(ctx context.Context, sessionID string) (models.StoredDraft, error) {
	var d models.StoredDraft
	doc, err := s.client.Collection(draftsCollection).Doc(sessionID).Get(ctx)
	if err != nil {
		return d, mapFirestoreError(err, "draft "+sessionID)
	}
	if err := doc.DataTo(&d); err != nil {
		return d, fmt.Errorf("decode draft %s: %w", sessionID, err)
	}
	return d, nil
}

func (s *FirestoreStore) DeleteDraft(ctx context.Context, sessionID string) error {
	_, err := s.client.Collection(draftsCollection).Doc(sessionID).Delete(ctx, firestore.Exists)
	return mapFirestoreError(err, "draft "+sessionID)
}

func (s *FirestoreStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	docs, err := s.client.Collection(usersCollection).
		Where(userEmailField, "==", strings.ToLower(email)).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return u, mapFirestoreError(err, "user "+email)
	}
	if len(docs) == 0 {
		return u, fmt.Errorf("user %s: %w", email, services.ErrNotFound)
	}
	if err := docs[0].DataTo(&u); err != nil {
		return u, fmt.Errorf("decode user %s: %w", email, err)
	}
	return u, nil
}

func (s *FirestoreStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = s.idGenerator()
	}
	u.Email = strings.ToLower(u.Email)
	if _, err := s.client.Collection(usersCollection).Doc(u.ID).Set(ctx, u); err != nil {
		return models.User{}, mapFirestoreError(err, "user "+u.Email)
	}
	return u, nil
}

func (s *FirestoreStore) ListUsers(ctx context.Context) ([]models.User, error) {
	iter := s.client.Collection(usersCollection).OrderBy(userEmailField, firestore.Asc).Documents(ctx)
	defer iter.Stop()
	users := []models.User{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, mapFirestoreError(err, "list users")
		}
		var u models.User
		if err := doc.DataTo(&u); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", doc.Ref.ID, err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *FirestoreStore) Health(ctx context.Context) error {
	_, err := s.client.Collection(incidentsCollection).Limit(1).Documents(ctx).GetAll()
	return mapFirestoreError(err, "health check")
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
