package storage

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eventlife/eventlife/internal/model"
)

// QuestionRepo provides operations for attendee questions.
type QuestionRepo struct {
	db *DB
}

// NewQuestionRepo creates a new question repository.
func NewQuestionRepo(db *DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create stores a new question.
func (r *QuestionRepo) Create(q *model.Question) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.Key == "" {
		q.Key = model.GenerateQuestionKey(q.ID)
	}
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now()
	}
	return r.db.Set(q)
}

// Get retrieves a question by ID.
func (r *QuestionRepo) Get(id string) (*model.Question, error) {
	q := &model.Question{}
	if err := r.db.Get(model.GenerateQuestionKey(id), q); err != nil {
		return nil, err
	}
	return q, nil
}

// List returns all questions, newest first.
func (r *QuestionRepo) List() ([]*model.Question, error) {
	var questions []*model.Question
	err := r.db.ForEach(model.PrefixQuestion+":",
		func() model.Model { return &model.Question{} },
		func(m model.Model) error {
			questions = append(questions, m.(*model.Question))
			return nil
		})
	if err != nil {
		return nil, err
	}
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].Timestamp.After(questions[j].Timestamp)
	})
	return questions, nil
}

// IncrementReplies bumps the reply counter for a question.
func (r *QuestionRepo) IncrementReplies(id string) error {
	q, err := r.Get(id)
	if err != nil {
		return err
	}
	q.Replies++
	return r.db.Set(q)
}

// Delete removes a question by ID.
func (r *QuestionRepo) Delete(id string) error {
	return r.db.Delete(model.GenerateQuestionKey(id))
}
