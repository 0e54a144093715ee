package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"staffclock/src/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// attendanceDocument รูปแบบที่เก็บใน collection attendance
type attendanceDocument struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty"`
	models.AttendanceRecord `bson:",inline"`
}

func (d attendanceDocument) record() models.AttendanceRecord {
	rec := d.AttendanceRecord
	rec.ID = d.ID.Hex()
	return rec
}

// MongoAttendanceRepository เก็บ AttendanceRecord ใน MongoDB
type MongoAttendanceRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoAttendanceRepository(db *mongo.Database) *MongoAttendanceRepository {
	return &MongoAttendanceRepository{
		client:     db.Client(),
		collection: db.Collection("attendance"),
	}
}

// EnsureIndexes สร้าง index ที่ query ฝั่ง engine และ admin ต้องใช้
func (r *MongoAttendanceRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timeOut", Value: -1}}},
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{
			Keys: bson.D{{Key: "splitId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"splitId": bson.M{"$exists": true}}),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create attendance indexes: %w", err)
	}
	return nil
}

func (r *MongoAttendanceRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.AttendanceRecord, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []attendanceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode attendance: %w", err)
	}
	records := make([]models.AttendanceRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.record())
	}
	return records, nil
}

func (r *MongoAttendanceRepository) findOne(ctx context.Context, filter bson.M, sort bson.D) (*models.AttendanceRecord, error) {
	var doc attendanceDocument
	err := r.collection.FindOne(ctx, filter, options.FindOne().SetSort(sort)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	rec := doc.record()
	return &rec, nil
}

func (r *MongoAttendanceRepository) FindByUserAndDate(ctx context.Context, userID, date string) ([]models.AttendanceRecord, error) {
	return r.find(ctx, bson.M{"userId": userID, "date": date})
}

func (r *MongoAttendanceRepository) FindByUser(ctx context.Context, userID string) ([]models.AttendanceRecord, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *MongoAttendanceRepository) FindByDateRange(ctx context.Context, start, end string) ([]models.AttendanceRecord, error) {
	return r.find(ctx, bson.M{"date": bson.M{"$gte": start, "$lte": end}})
}

// FindOpenSession timeOut เป็น null หรือไม่มี field = ยังไม่ clock-out
func (r *MongoAttendanceRepository) FindOpenSession(ctx context.Context, userID string) (*models.AttendanceRecord, error) {
	return r.findOne(ctx,
		bson.M{"userId": userID, "timeOut": nil},
		bson.D{{Key: "timeIn", Value: -1}},
	)
}

func (r *MongoAttendanceRepository) FindLatestClosed(ctx context.Context, userID string) (*models.AttendanceRecord, error) {
	return r.findOne(ctx,
		bson.M{"userId": userID, "timeOut": bson.M{"$ne": nil}},
		bson.D{{Key: "timeOut", Value: -1}},
	)
}

func (r *MongoAttendanceRepository) Create(ctx context.Context, rec *models.AttendanceRecord) (string, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	res, err := r.collection.InsertOne(ctx, attendanceDocument{AttendanceRecord: *rec})
	if err != nil {
		return "", fmt.Errorf("failed to insert attendance: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	rec.ID = oid.Hex()
	return rec.ID, nil
}

func updateSet(fields models.RecordUpdate) bson.M {
	set := bson.M{}
	if fields.TimeOut != nil {
		set["timeOut"] = *fields.TimeOut
	}
	if fields.LocationOut != nil {
		set["locationOut"] = *fields.LocationOut
	}
	if fields.OriginalTimeOut != nil {
		set["originalTimeOut"] = *fields.OriginalTimeOut
	}
	if fields.SplitID != "" {
		set["splitId"] = fields.SplitID
	}
	return set
}

func (r *MongoAttendanceRepository) Update(ctx context.Context, id string, fields models.RecordUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid attendance id %q: %w", id, err)
	}
	res, err := r.collection.UpdateByID(ctx, oid, bson.M{"$set": updateSet(fields)})
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplySplit ปิด record เดิมและ upsert record ต่อเนื่องใน transaction เดียว
// ถ้า server เป็น standalone (ไม่รองรับ transaction) จะทำทีละขั้นแบบ idempotent
func (r *MongoAttendanceRepository) ApplySplit(ctx context.Context, plan models.SplitPlan) ([]string, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	res, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		ids, _, err := r.applySplit(sc, plan)
		return ids, err
	})
	if err == nil {
		return res.([]string), nil
	}
	if !isTransactionUnsupported(err) {
		return nil, err
	}

	log.Println("⚠️ MongoDB transactions unavailable, applying split sequentially:", plan.SplitID)
	ids, closed, err := r.applySplit(ctx, plan)
	if err != nil && closed {
		return nil, wrapPartial(err)
	}
	return ids, err
}

func (r *MongoAttendanceRepository) applySplit(ctx context.Context, plan models.SplitPlan) ([]string, bool, error) {
	upd := plan.Close
	upd.SplitID = plan.SplitID
	if err := r.Update(ctx, plan.CloseID, upd); err != nil {
		return nil, false, err
	}

	ids := make([]string, 0, len(plan.Continuations))
	for _, c := range plan.Continuations {
		c.SplitID = plan.SplitID
		if c.CreatedAt.IsZero() {
			c.CreatedAt = time.Now()
		}
		filter := bson.M{"splitId": plan.SplitID, "date": c.Date}
		res, err := r.collection.UpdateOne(ctx, filter,
			bson.M{"$setOnInsert": attendanceDocument{AttendanceRecord: c}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return nil, true, fmt.Errorf("failed to upsert continuation %s: %w", c.Date, err)
		}
		if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
			ids = append(ids, oid.Hex())
			continue
		}
		var existing attendanceDocument
		if err := r.collection.FindOne(ctx, filter).Decode(&existing); err != nil {
			return nil, true, fmt.Errorf("failed to read continuation %s: %w", c.Date, err)
		}
		ids = append(ids, existing.ID.Hex())
	}
	return ids, true, nil
}

// isTransactionUnsupported standalone mongod ตอบ IllegalOperation (code 20)
func isTransactionUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 20 {
		return true
	}
	return strings.Contains(err.Error(), "Transaction numbers are only allowed")
}
