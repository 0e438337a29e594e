package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civiclens-be/models"
)

// MongoIssueRepository stores reports in a MongoDB collection.
type MongoIssueRepository struct {
	collection *mongo.Collection
}

func NewMongoIssueRepository(db *mongo.Database) *MongoIssueRepository {
	return &MongoIssueRepository{collection: db.Collection(IssuesCollection)}
}

// issueDocument adds the ObjectID the driver assigns.
type issueDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	models.IssueReport `bson:",inline"`
}

func (d issueDocument) toModel() models.IssueReport {
	issue := d.IssueReport
	issue.ID = d.ID.Hex()
	return issue
}

// EnsureIndexes creates the indexes the dashboard queries rely on.
func (r *MongoIssueRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

func (r *MongoIssueRepository) Create(ctx context.Context, issue *models.IssueReport) (string, error) {
	doc := issueDocument{ID: primitive.NewObjectID(), IssueReport: *issue}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert issue: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (r *MongoIssueRepository) Get(ctx context.Context, id string) (*models.IssueReport, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrIssueNotFound
	}

	var doc issueDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("find issue: %w", err)
	}
	issue := doc.toModel()
	return &issue, nil
}

func mongoFilter(f models.IssueFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		filter["$or"] = []bson.M{
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
			{"address": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return filter
}

func (r *MongoIssueRepository) List(ctx context.Context, f models.IssueFilter) ([]models.IssueReport, int64, error) {
	f.Normalize()
	filter := mongoFilter(f)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count issues: %w", err)
	}

	// Priority labels do not sort lexically, so that ordering is done after the fetch.
	if f.Sort == models.SortPriority {
		cursor, err := r.collection.Find(ctx, filter)
		if err != nil {
			return nil, 0, fmt.Errorf("find issues: %w", err)
		}
		all, err := decodeAll(ctx, cursor)
		if err != nil {
			return nil, 0, err
		}
		sortIssues(all, f.Sort)
		return paginate(all, f), total, nil
	}

	order := -1
	if f.Sort == models.SortOldest {
		order = 1
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: order}}).
		SetSkip(int64(f.Skip())).
		SetLimit(int64(f.Limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("find issues: %w", err)
	}
	issues, err := decodeAll(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]models.IssueReport, error) {
	defer cursor.Close(ctx)

	var docs []issueDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	issues := make([]models.IssueReport, 0, len(docs))
	for _, d := range docs {
		issues = append(issues, d.toModel())
	}
	return issues, nil
}

func (r *MongoIssueRepository) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrIssueNotFound
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("update issue: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrIssueNotFound
	}
	return nil
}

type groupCount struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

func (r *MongoIssueRepository) countBy(ctx context.Context, field string) ([]groupCount, error) {
	pipeline := []bson.M{
		{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	var counts []groupCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("decode %s counts: %w", field, err)
	}
	return counts, nil
}

func (r *MongoIssueRepository) Summary(ctx context.Context) (*models.IssueSummary, error) {
	summary := models.NewIssueSummary()

	statuses, err := r.countBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	for _, c := range statuses {
		status := models.IssueStatus(c.Key)
		summary.ByStatus[status] = c.Count
		summary.Total += c.Count
		if status != models.Resolved {
			summary.Open += c.Count
		}
	}

	priorities, err := r.countBy(ctx, "priority")
	if err != nil {
		return nil, err
	}
	for _, c := range priorities {
		summary.ByPriority[models.IssuePriority(c.Key)] = c.Count
	}

	categories, err := r.countBy(ctx, "category")
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		summary.ByCategory[models.IssueCategory(c.Key)] = c.Count
	}

	var countErr error
	summary.FillLast7Days(time.Now(), func(from, to time.Time) int64 {
		if countErr != nil {
			return 0
		}
		count, err := r.collection.CountDocuments(ctx, bson.M{
			"createdAt": bson.M{"$gte": from, "$lt": to},
		})
		if err != nil {
			countErr = fmt.Errorf("count issues for %s: %w", from.Format("2006-01-02"), err)
			return 0
		}
		return count
	})
	if countErr != nil {
		return nil, countErr
	}
	return summary, nil
}
