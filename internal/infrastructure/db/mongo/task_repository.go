package mongo

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

	"github.com/taskboard/task-manager/internal/core/domain"
	"github.com/taskboard/task-manager/internal/core/ports"
)

const collectionTasks = "tasks"

type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

// mongoTask stores assignedTo as null when unassigned so that
// {assignedTo: {$ne: null}} counts assigned tasks.
type mongoTask struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Title       string              `bson:"title"`
	Description string              `bson:"description"`
	DueDate     *time.Time          `bson:"dueDate"`
	Priority    string              `bson:"priority"`
	Status      string              `bson:"status"`
	CreatedBy   primitive.ObjectID  `bson:"createdBy"`
	AssignedTo  *primitive.ObjectID `bson:"assignedTo"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

func (mt *mongoTask) toDomain() *domain.Task {
	t := &domain.Task{
		ID:          mt.ID.Hex(),
		Title:       mt.Title,
		Description: mt.Description,
		Priority:    mt.Priority,
		Status:      mt.Status,
		CreatedBy:   mt.CreatedBy.Hex(),
		CreatedAt:   mt.CreatedAt,
		UpdatedAt:   mt.UpdatedAt,
	}
	if mt.DueDate != nil {
		due := mt.DueDate.UTC()
		t.DueDate = &due
	}
	if mt.AssignedTo != nil {
		t.AssignedTo = mt.AssignedTo.Hex()
	}
	return t
}

func optionalObjectID(id string) (*primitive.ObjectID, error) {
	if id == "" {
		return nil, nil
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

// Create inserts a new task document.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	createdBy, err := objectID(t.CreatedBy)
	if err != nil {
		return nil, err
	}
	assignedTo, err := optionalObjectID(t.AssignedTo)
	if err != nil {
		return nil, err
	}

	doc := mongoTask{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatedBy:   createdBy,
		AssignedTo:  assignedTo,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// FindByID retrieves a task by its identifier.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var mt mongoTask
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return mt.toDomain(), nil
}

// Find returns every task matching the filter.
func (r *TaskRepository) Find(ctx context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := buildTaskFilter(f)
	if err != nil {
		return nil, err
	}

	opts := options.Find()
	if f.SortByDueDate {
		opts.SetSort(bson.D{{Key: "dueDate", Value: 1}})
	}

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoTask
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toDomain())
	}
	return tasks, nil
}

// buildTaskFilter translates a TaskFilter into a Mongo query. The creator/
// assignee and title/description alternatives are two separate $or clauses,
// so both live under $and.
func buildTaskFilter(f ports.TaskFilter) (bson.D, error) {
	var and bson.A

	if f.ParticipantID != "" {
		oid, err := objectID(f.ParticipantID)
		if err != nil {
			return nil, err
		}
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"createdBy": oid},
			bson.M{"assignedTo": oid},
		}})
	}
	if f.AssignedTo != "" {
		oid, err := objectID(f.AssignedTo)
		if err != nil {
			return nil, err
		}
		and = append(and, bson.M{"assignedTo": oid})
	}
	if f.Status != "" {
		and = append(and, bson.M{"status": f.Status})
	}
	if f.StatusFold != "" {
		and = append(and, bson.M{"status": primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(f.StatusFold) + "$",
			Options: "i",
		}})
	}
	if f.Priority != "" {
		and = append(and, bson.M{"priority": f.Priority})
	}
	if f.DueBefore != nil {
		and = append(and, bson.M{"dueDate": bson.M{"$lte": *f.DueBefore}})
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
		}})
	}

	if len(and) == 0 {
		return bson.D{}, nil
	}
	return bson.D{{Key: "$and", Value: and}}, nil
}

// Update rewrites the mutable fields. createdBy is deliberately absent from $set.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := objectID(t.ID)
	if err != nil {
		return err
	}
	assignedTo, err := optionalObjectID(t.AssignedTo)
	if err != nil {
		return err
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":       t.Title,
		"description": t.Description,
		"dueDate":     t.DueDate,
		"priority":    t.Priority,
		"status":      t.Status,
		"assignedTo":  assignedTo,
		"updatedAt":   t.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Summary counts tasks across the whole collection.
func (r *TaskRepository) Summary(ctx context.Context) (domain.TaskSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var sum domain.TaskSummary
	counts := []struct {
		dst    *int64
		filter bson.M
	}{
		{&sum.Total, bson.M{}},
		{&sum.Assigned, bson.M{"assignedTo": bson.M{"$ne": nil}}},
		{&sum.Completed, bson.M{"status": domain.TaskStatusCompleted}},
		{&sum.Pending, bson.M{"status": domain.TaskStatusPending}},
	}
	for _, c := range counts {
		n, err := r.col.CountDocuments(ctx, c.filter)
		if err != nil {
			return domain.TaskSummary{}, fmt.Errorf("count tasks: %w", err)
		}
		*c.dst = n
	}
	return sum, nil
}

// EnsureIndexes creates the lookup indexes used by list and filter queries.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "dueDate", Value: 1}}},
		{Keys: bson.D{{Key: "assignedTo", Value: 1}, {Key: "dueDate", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
