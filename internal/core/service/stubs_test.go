package service

import (
	"context"
	"sync"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Gateway stub
// ---------------------------------------------------------------------------

type stubGateway struct {
	listQuestions  func(ctx context.Context) ([]domain.Question, error)
	createQuestion func(ctx context.Context, d domain.QuestionDraft) (*domain.Question, error)
	updateQuestion func(ctx context.Context, id string, p domain.QuestionPatch) (*domain.Question, error)
	deleteQuestion func(ctx context.Context, id string) error
	evaluate       func(ctx context.Context, r domain.EvaluationRequest) (*domain.Evaluation, error)
	uploadGuide    func(ctx context.Context, f domain.FileUpload) (*domain.UploadReceipt, error)
	uploadAnswer   func(ctx context.Context, u domain.AssignmentUpload) (*domain.AssignmentReceipt, error)
	extractText    func(ctx context.Context, f domain.FileUpload) (string, error)
	getResults     func(ctx context.Context, userID string, role domain.Role) ([]domain.Result, error)

	mu    sync.Mutex
	calls []string
}

var _ ports.Gateway = (*stubGateway)(nil)

func (g *stubGateway) record(op string) {
	g.mu.Lock()
	g.calls = append(g.calls, op)
	g.mu.Unlock()
}

func (g *stubGateway) called(op string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.calls {
		if c == op {
			return true
		}
	}
	return false
}

func (g *stubGateway) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	g.record("list_questions")
	if g.listQuestions == nil {
		return []domain.Question{}, nil
	}
	return g.listQuestions(ctx)
}

func (g *stubGateway) CreateQuestion(ctx context.Context, d domain.QuestionDraft) (*domain.Question, error) {
	g.record("create_question")
	return g.createQuestion(ctx, d)
}

func (g *stubGateway) UpdateQuestion(ctx context.Context, id string, p domain.QuestionPatch) (*domain.Question, error) {
	g.record("update_question")
	return g.updateQuestion(ctx, id, p)
}

func (g *stubGateway) DeleteQuestion(ctx context.Context, id string) error {
	g.record("delete_question")
	if g.deleteQuestion == nil {
		return nil
	}
	return g.deleteQuestion(ctx, id)
}

func (g *stubGateway) EvaluateAnswer(ctx context.Context, r domain.EvaluationRequest) (*domain.Evaluation, error) {
	g.record("evaluate_answer")
	return g.evaluate(ctx, r)
}

func (g *stubGateway) UploadTeacherGuide(ctx context.Context, f domain.FileUpload) (*domain.UploadReceipt, error) {
	g.record("upload_teacher_guide")
	return g.uploadGuide(ctx, f)
}

func (g *stubGateway) UploadAssignment(ctx context.Context, u domain.AssignmentUpload) (*domain.AssignmentReceipt, error) {
	g.record("upload_assignment")
	return g.uploadAnswer(ctx, u)
}

func (g *stubGateway) ExtractText(ctx context.Context, f domain.FileUpload) (string, error) {
	g.record("extract_text")
	return g.extractText(ctx, f)
}

func (g *stubGateway) GetResults(ctx context.Context, userID string, role domain.Role) ([]domain.Result, error) {
	g.record("get_results")
	if g.getResults == nil {
		return []domain.Result{}, nil
	}
	return g.getResults(ctx, userID, role)
}

// ---------------------------------------------------------------------------
// Storage stub
// ---------------------------------------------------------------------------

type mapStorage struct {
	mu     sync.Mutex
	values map[string][]byte
	getErr error
}

func newMapStorage() *mapStorage {
	return &mapStorage{values: make(map[string][]byte)}
}

func (m *mapStorage) Scope(namespace string) ports.LocalStorage {
	return scopedMap{m: m, prefix: namespace + "/"}
}

func (m *mapStorage) raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

type scopedMap struct {
	m      *mapStorage
	prefix string
}

func (s scopedMap) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s.m.getErr != nil {
		return nil, false, s.m.getErr
	}
	v, ok := s.m.raw(s.prefix + key)
	return v, ok, nil
}

func (s scopedMap) Set(_ context.Context, key string, value []byte) error {
	s.m.mu.Lock()
	s.m.values[s.prefix+key] = append([]byte(nil), value...)
	s.m.mu.Unlock()
	return nil
}

func (s scopedMap) Remove(_ context.Context, key string) error {
	s.m.mu.Lock()
	delete(s.m.values, s.prefix+key)
	s.m.mu.Unlock()
	return nil
}

// ---------------------------------------------------------------------------
// User repository stub
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // by email
}

func newStubUserRepo(users ...domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for i := range users {
		u := users[i]
		r.users[u.Email] = &u
	}
	return r
}

func (r *stubUserRepo) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return nil, domain.ErrUserExists
	}
	cp := *user
	r.users[user.Email] = &cp
	out := cp
	return &out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, u := range r.users {
		if u.ID == user.ID {
			delete(r.users, email)
			cp := *user
			r.users[user.Email] = &cp
			out := cp
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// ---------------------------------------------------------------------------
// Bus stub
// ---------------------------------------------------------------------------

type recordingBus struct {
	mu        sync.Mutex
	published []domain.CompletionSignal
}

func (b *recordingBus) Subscribe(string, ports.CompletionListener) func() { return func() {} }

func (b *recordingBus) Publish(s domain.CompletionSignal) {
	b.mu.Lock()
	b.published = append(b.published, s)
	b.mu.Unlock()
}

func float(v float64) *float64 { return &v }
