package mongodb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/clinic-booking/internal/model"
	"github.com/jwalitptl/clinic-booking/internal/repository"
)

const prescriptionCollection = "prescriptions"

type prescriptionRepository struct {
	collection *mongo.Collection
}

func NewPrescriptionRepository(client *mongo.Client, dbName string) repository.PrescriptionRepository {
	return &prescriptionRepository{
		collection: client.Database(dbName).Collection(prescriptionCollection),
	}
}

// EnsureIndexes creates the appointment lookup index.
func EnsureIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	_, err := client.Database(dbName).Collection(prescriptionCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "appointment_id", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("appointment_id_created_at"),
	})
	if err != nil {
		return fmt.Errorf("failed to create prescription index: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	if _, err := r.collection.InsertOne(ctx, prescription); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create prescription: %w", repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Prescription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"appointment_id": appointmentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find prescriptions: %w", err)
	}
	defer cursor.Close(ctx)

	prescriptions := []*model.Prescription{}
	if err := cursor.All(ctx, &prescriptions); err != nil {
		return nil, fmt.Errorf("failed to decode prescriptions: %w", err)
	}
	return prescriptions, nil
}
