package evaluation

import (
	"context"
	"sort"
	"strings"
	"time"

	evaluationerrors "stage-manager/internal/evaluation/errors"
	"stage-manager/internal/permission"
	"stage-manager/internal/student"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=evaluation_service.go -destination=mock/evaluation_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor permission.Actor, req CreateEvaluationRequest) (EvaluationResponse, error)
	List(ctx context.Context, actor permission.Actor, studentID string) ([]EvaluationResponse, error)
}

type service struct {
	repo     Repository
	students student.Repository
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(repo Repository, students student.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("evaluation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("evaluation.service")
	}
	return &service{
		repo:     repo,
		students: students,
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, actor permission.Actor, req CreateEvaluationRequest) (EvaluationResponse, error) {
	if actor.Role != permission.RoleSchool && actor.Role != permission.RoleCompany {
		return EvaluationResponse{}, evaluationerrors.ErrEvaluatorRole
	}

	st, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return EvaluationResponse{}, err
	}

	date := req.Date
	if date == "" {
		date = s.now().Format(dateLayout)
	}

	e := Evaluation{
		ID:                uuid.NewString(),
		StudentID:         st.ID,
		StudentName:       st.Name,
		EvaluatorID:       actor.ID,
		EvaluatorName:     actor.Name,
		Date:              date,
		Attendance:        deref(req.Attendance),
		SocialInteraction: deref(req.SocialInteraction),
		PracticalLearning: deref(req.PracticalLearning),
		WorkQuality:       deref(req.WorkQuality),
		Comments:          strings.TrimSpace(req.Comments),
	}
	if !e.scoresInRange() {
		return EvaluationResponse{}, evaluationerrors.ErrScoreOutOfRange
	}

	if err := s.repo.Create(ctx, &e); err != nil {
		s.logger.Error("create evaluation failed",
			zap.String("student_id", e.StudentID),
			zap.Error(err),
		)
		return EvaluationResponse{}, err
	}

	s.logger.Info("evaluation created",
		zap.String("evaluation_id", e.ID),
		zap.String("student_id", e.StudentID),
		zap.String("evaluator_id", e.EvaluatorID),
	)
	return toResponse(e), nil
}

// List returns evaluations newest first. Students only ever see their own;
// other roles may narrow the list with studentID.
func (s *service) List(ctx context.Context, actor permission.Actor, studentID string) ([]EvaluationResponse, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Warn("load evaluations failed, using empty collection", zap.Error(err))
	}

	if actor.Role == permission.RoleStudent {
		studentID = actor.ID
	}

	out := make([]EvaluationResponse, 0, len(all))
	for _, e := range all {
		if studentID != "" && e.StudentID != studentID {
			continue
		}
		out = append(out, toResponse(e))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
