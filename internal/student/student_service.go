package student

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"stage-manager/internal/events"
	"stage-manager/internal/messaging/kafka"
	"stage-manager/internal/shared/contextutil"
	"stage-manager/internal/shared/kvstore"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const StudentOptionsKey = "students:options"

const optionsTTL = time.Hour

//go:generate mockgen -source=student_service.go -destination=mock/student_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateStudentRequest) (StudentResponse, error)
	GetAll(ctx context.Context) ([]StudentResponse, error)
	GetOptions(ctx context.Context) ([]StudentOption, error)
	GetByID(ctx context.Context, id string) (StudentResponse, error)
	InvalidateCache(ctx context.Context) error
	SeedDemo(ctx context.Context) error
}

type service struct {
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(repo, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("student.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("student.service")
	}
	return &service{
		repo:   repo,
		outbox: outboxRepo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateStudentRequest) (StudentResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create student requested",
		zap.String("request_id", rid),
		zap.String("company", req.Company),
	)

	st := &Student{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Company: req.Company,
		Contact: req.Contact,
	}

	if err := s.repo.Create(ctx, st); err != nil {
		s.logger.Error("create student persist failed", zap.String("request_id", rid), zap.Error(err))
		return StudentResponse{}, err
	}

	if err := s.InvalidateCache(ctx); err != nil {
		s.logger.Error("failed to invalidate student options cache",
			zap.Error(err),
			zap.String("key", StudentOptionsKey),
		)
	}

	if s.outbox != nil {
		event := events.StudentCreatedEvent{
			EventType:  "student_created",
			RequestID:  rid,
			StudentID:  st.ID,
			Company:    st.Company,
			OccurredAt: time.Now().UTC(),
		}
		s.enqueue(ctx, st.ID, event)
	}

	s.logger.Info("create student success",
		zap.String("request_id", rid),
		zap.String("student_id", st.ID),
	)
	return mapToResponse(*st), nil
}

// enqueue runs after the collection was saved, so a failure is only logged.
func (s *service) enqueue(ctx context.Context, studentID string, event events.StudentCreatedEvent) {
	ev, err := kafka.NewOutboxEvent(ctx, "student", studentID, event.EventType, events.StudentCreatedTopic, event)
	if err == nil {
		err = s.outbox.Create(ctx, ev)
	}
	if err != nil {
		s.logger.Error("create student outbox persist failed",
			zap.String("student_id", studentID),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("create student outbox queued", zap.String("student_id", studentID))
}

func (s *service) GetAll(ctx context.Context) ([]StudentResponse, error) {
	s.logger.Debug("get all students requested")
	students, err := s.repo.FindAll(ctx)
	if err != nil {
		if !errors.Is(err, kvstore.ErrStorageRead) {
			s.logger.Error("get all students failed", zap.Error(err))
			return nil, err
		}
		s.logger.Warn("get all students read failed, serving empty list", zap.Error(err))
		students = []Student{}
	}

	return mapToListResponse(students), nil
}

func (s *service) GetOptions(ctx context.Context) ([]StudentOption, error) {
	// 1. Cek Redis
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, StudentOptionsKey).Result(); err == nil {
			var resp []StudentOption
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// 2. Singleflight saat banyak form dibuka bersamaan
	v, err, _ := s.sf.Do(StudentOptionsKey, func() (interface{}, error) {
		students, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}

		resp := make([]StudentOption, 0, len(students))
		for _, st := range students {
			resp = append(resp, StudentOption{ID: st.ID, Name: st.Name})
		}

		// 3. Simpan ke Redis
		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, StudentOptionsKey, jsonData, optionsTTL)
			}
		}

		return resp, nil
	})

	if err != nil {
		if errors.Is(err, kvstore.ErrStorageRead) {
			s.logger.Warn("get student options read failed, serving empty list", zap.Error(err))
			return []StudentOption{}, nil
		}
		return nil, err
	}

	return v.([]StudentOption), nil
}

func (s *service) GetByID(ctx context.Context, id string) (StudentResponse, error) {
	s.logger.Debug("get student by id requested", zap.String("student_id", id))
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("get student by id failed", zap.String("student_id", id), zap.Error(err))
		return StudentResponse{}, err
	}

	return mapToResponse(*st), nil
}

func (s *service) InvalidateCache(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, StudentOptionsKey).Err()
}

func (s *service) SeedDemo(ctx context.Context) error {
	seeded, err := s.repo.Seed(ctx, DemoStudents)
	if err != nil {
		s.logger.Error("seed demo students failed", zap.Error(err))
		return err
	}
	if seeded {
		s.logger.Info("demo students seeded", zap.Int("count", len(DemoStudents)))
		return s.InvalidateCache(ctx)
	}
	return nil
}

func mapToResponse(st Student) StudentResponse {
	return StudentResponse{
		ID:      st.ID,
		Name:    st.Name,
		Company: st.Company,
		Contact: st.Contact,
	}
}

func mapToListResponse(students []Student) []StudentResponse {
	resp := make([]StudentResponse, 0, len(students))
	for _, st := range students {
		resp = append(resp, mapToResponse(st))
	}
	return resp
}
