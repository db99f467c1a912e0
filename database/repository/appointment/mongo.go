package appointmentRepo

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"autobook/database"
	"autobook/models"
)

type mongoRepo struct {
	coll *mongo.Collection
}

// NewMongoRepo returns a Repository backed by MongoDB.
func NewMongoRepo() Repository {
	db := database.MongoClient.Database("autobook")
	return &mongoRepo{coll: db.Collection("appointments")}
}

// Create inserts a new appointment and returns its ID.
func (r *mongoRepo) Create(ctx context.Context, appt models.Appointment) (string, error) {
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		return "", err
	}
	return appt.ID, nil
}

// GetByID returns an appointment by its ID.
func (r *mongoRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Update replaces the stored appointment document.
func (r *mongoRepo) Update(ctx context.Context, appt models.Appointment) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": appt.ID}, appt)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByDateLocation fetches all appointments for one day at one location.
func (r *mongoRepo) ListByDateLocation(ctx context.Context, date, location string) ([]models.Appointment, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"date": date, "location": location})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

// List fetches appointments matching the given filters, sorted by date and
// start time. Customer-name matching is a substring test done client-side.
func (r *mongoRepo) List(ctx context.Context, f Filters) ([]models.Appointment, error) {
	filter := bson.M{}
	if f.Date != "" {
		filter["date"] = f.Date
	}
	if f.Location != "" {
		filter["location"] = f.Location
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.ServiceType != "" {
		filter["serviceType"] = f.ServiceType
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}

	if f.CustomerName != "" {
		filtered := appts[:0]
		for _, appt := range appts {
			if strings.Contains(strings.ToLower(appt.Customer.FullName), strings.ToLower(f.CustomerName)) {
				filtered = append(filtered, appt)
			}
		}
		appts = filtered
	}

	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date < appts[j].Date
		}
		return appts[i].Start < appts[j].Start
	})
	return appts, nil
}
