package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/incident-tracker/internal/core/domain"
	"github.com/sirpyerre/incident-tracker/internal/core/ports"
)

const collectionIncidents = "incidents"

var _ ports.IncidentRepository = (*IncidentRepository)(nil)

// IncidentRepository implements ports.IncidentRepository using MongoDB.
type IncidentRepository struct {
	col *mongo.Collection
	seq *sequence
}

func NewIncidentRepository(db *mongo.Database) *IncidentRepository {
	return &IncidentRepository{
		col: db.Collection(collectionIncidents),
		seq: newSequence(db, collectionIncidents),
	}
}

type mongoIncident struct {
	ID          int64     `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Status      string    `bson:"status"`
	Priority    string    `bson:"priority"`
	CreatedBy   string    `bson:"created_by"`
	AssignedTo  *string   `bson:"assigned_to"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func fromIncident(i *domain.Incident) mongoIncident {
	return mongoIncident{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Status:      string(i.Status),
		Priority:    i.Priority,
		CreatedBy:   i.CreatedBy,
		AssignedTo:  i.AssignedTo,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func (m mongoIncident) toDomain() *domain.Incident {
	return &domain.Incident{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Status:      domain.IncidentStatus(m.Status),
		Priority:    m.Priority,
		CreatedBy:   m.CreatedBy,
		AssignedTo:  m.AssignedTo,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

// Create assigns the next sequence value as the incident ID and inserts it.
func (r *IncidentRepository) Create(ctx context.Context, inc *domain.Incident) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	inc.ID = id

	if _, err := r.col.InsertOne(ctx, fromIncident(inc)); err != nil {
		return fmt.Errorf("insert incident: %w", err)
	}
	return nil
}

func (r *IncidentRepository) FindByID(ctx context.Context, id int64) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoIncident
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("find incident: %w", err)
	}
	return m.toDomain(), nil
}

// Patch $sets only the fields present in p. updated_at goes through $max so
// a slow writer cannot move it backwards.
func (r *IncidentRepository) Patch(ctx context.Context, id int64, p ports.IncidentPatch) (*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	if p.AssignedToSet {
		set["assigned_to"] = p.AssignedTo
	}
	update := bson.M{"$max": bson.M{"updated_at": p.UpdatedAt}}
	if len(set) > 0 {
		update["$set"] = set
	}

	var m mongoIncident
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("update incident: %w", err)
	}
	return m.toDomain(), nil
}

func (r *IncidentRepository) List(ctx context.Context) ([]*domain.Incident, error) {
	return r.find(ctx, bson.M{})
}

func (r *IncidentRepository) ListByCreator(ctx context.Context, userID string) ([]*domain.Incident, error) {
	return r.find(ctx, bson.M{"created_by": userID})
}

func (r *IncidentRepository) find(ctx context.Context, filter bson.M) ([]*domain.Incident, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoIncident
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode incidents: %w", err)
	}

	out := make([]*domain.Incident, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the incidents collection.
func (r *IncidentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}
