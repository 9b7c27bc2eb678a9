package attendance

import (
	"context"
	"errors"
	"sort"
	"time"

	attendanceerrors "stage-manager/internal/attendance/errors"
	"stage-manager/internal/events"
	"stage-manager/internal/messaging/kafka"
	"stage-manager/internal/metrics"
	"stage-manager/internal/permission"
	"stage-manager/internal/shared/apperror"
	"stage-manager/internal/shared/contextutil"
	"stage-manager/internal/shared/kvstore"
	"stage-manager/internal/student"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Generate(ctx context.Context, actor permission.Actor, req GenerateRequest) (ReconcileResponse, error)
	Register(ctx context.Context, actor permission.Actor, req RegisterRequest) (AttendanceRecord, error)
	SetPresence(ctx context.Context, actor permission.Actor, id string, req SetPresenceRequest) (AttendanceRecord, error)
	Import(ctx context.Context, actor permission.Actor, req ImportRequest) (ReconcileResponse, error)
	List(ctx context.Context, actor permission.Actor, f Filter) ([]AttendanceRecord, error)
	Permissions(ctx context.Context, actor permission.Actor) PermissionsResponse
}

// maxGenerateSpan bounds the calendar days a single Generate may cover.
const maxGenerateSpan = 366

// CacheInvalidator drops caches derived from the attendance collection.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

type service struct {
	repo     Repository
	students student.Repository
	outbox   kafka.OutboxRepository
	cache    CacheInvalidator
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(repo Repository, students student.Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(repo, students, nil, nil, logger...)
}

// NewServiceWithOutbox also queues an outbox event and clears cache after
// every saved change. Both outboxRepo and cache may be nil.
func NewServiceWithOutbox(
	repo Repository,
	students student.Repository,
	outboxRepo kafka.OutboxRepository,
	cache CacheInvalidator,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		repo:     repo,
		students: students,
		outbox:   outboxRepo,
		cache:    cache,
		now:      time.Now,
		logger:   l,
	}
}

func (s *service) Generate(ctx context.Context, actor permission.Actor, req GenerateRequest) (ReconcileResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("generate attendance requested",
		zap.String("request_id", rid),
		zap.String("role", actor.Role.String()),
		zap.String("from", req.From),
		zap.String("to", req.To),
		zap.Int("student_count", len(req.StudentIDs)),
		zap.Bool("all", req.All),
	)

	from, err := parseDate(req.From)
	if err != nil {
		return ReconcileResponse{}, err
	}
	to, err := parseDate(req.To)
	if err != nil {
		return ReconcileResponse{}, err
	}

	targets, err := s.resolveStudents(ctx, req)
	if err != nil {
		s.logger.Warn("generate attendance student lookup failed", zap.String("request_id", rid), zap.Error(err))
		return ReconcileResponse{}, err
	}

	if from.After(to) {
		s.logger.Info("generate attendance empty range", zap.String("request_id", rid))
		return ReconcileResponse{Records: []AttendanceRecord{}}, nil
	}

	if int(to.Sub(from).Hours()/24)+1 > maxGenerateSpan {
		return ReconcileResponse{}, attendanceerrors.ErrRangeTooLong
	}

	if err := checkRange(actor.Role, from, to); err != nil {
		s.logger.Warn("generate attendance denied",
			zap.String("request_id", rid),
			zap.String("role", actor.Role.String()),
			zap.Error(err),
		)
		return ReconcileResponse{}, err
	}

	allow := func(d time.Time) bool { return permission.CanWrite(actor.Role, d) }
	incoming := Generate(from, to, targets, s.now(), allow)
	if len(incoming) == 0 {
		return ReconcileResponse{Records: []AttendanceRecord{}}, nil
	}

	total, err := s.merge(ctx, incoming)
	if err != nil {
		s.logger.Error("generate attendance persist failed", zap.String("request_id", rid), zap.Error(err))
		return ReconcileResponse{}, err
	}

	s.publish(ctx, actor, events.SourceGenerate, incoming, total)
	s.logger.Info("generate attendance success",
		zap.String("request_id", rid),
		zap.Int("incoming", len(incoming)),
		zap.Int("total", total),
	)
	return ReconcileResponse{Incoming: len(incoming), Total: total, Records: incoming}, nil
}

func (s *service) Register(ctx context.Context, actor permission.Actor, req RegisterRequest) (AttendanceRecord, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("register attendance requested",
		zap.String("request_id", rid),
		zap.String("role", actor.Role.String()),
		zap.String("student_id", req.StudentID),
		zap.String("date", req.Date),
	)

	day, err := parseDate(req.Date)
	if err != nil {
		return AttendanceRecord{}, err
	}
	if err := deny(permission.Check(actor.Role, day)); err != nil {
		s.logger.Warn("register attendance denied", zap.String("request_id", rid), zap.Error(err))
		return AttendanceRecord{}, err
	}

	st, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		s.logger.Warn("register attendance student lookup failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceRecord{}, err
	}

	present := true
	if req.IsPresent != nil {
		present = *req.IsPresent
	}
	rec := AttendanceRecord{
		ID:           uuid.NewString(),
		StudentID:    st.ID,
		StudentName:  st.Name,
		Date:         day.Format(DateLayout),
		IsPresent:    present,
		CheckInTime:  req.CheckInTime,
		CheckOutTime: req.CheckOutTime,
		Notes:        req.Notes,
	}

	total := 0
	err = s.repo.Update(ctx, func(existing []AttendanceRecord) ([]AttendanceRecord, error) {
		// an existing record for the same student and day keeps its id
		for _, r := range existing {
			if r.Key() == rec.Key() {
				rec.ID = r.ID
				break
			}
		}
		merged := Reconcile(existing, []AttendanceRecord{rec})
		total = len(merged)
		return merged, nil
	})
	if err != nil {
		s.logger.Error("register attendance persist failed", zap.String("request_id", rid), zap.Error(err))
		return AttendanceRecord{}, err
	}

	s.publish(ctx, actor, events.SourceRegister, []AttendanceRecord{rec}, total)
	s.logger.Info("register attendance success",
		zap.String("request_id", rid),
		zap.String("record_id", rec.ID),
	)
	return rec, nil
}

func (s *service) SetPresence(ctx context.Context, actor permission.Actor, id string, req SetPresenceRequest) (AttendanceRecord, error) {
	rid := contextutil.GetRequestID(ctx)
	if req.IsPresent == nil {
		return AttendanceRecord{}, apperror.RequiredField("Is Present")
	}
	s.logger.Debug("set presence requested",
		zap.String("request_id", rid),
		zap.String("record_id", id),
		zap.Bool("is_present", *req.IsPresent),
	)

	var rec AttendanceRecord
	total := 0
	err := s.repo.Update(ctx, func(existing []AttendanceRecord) ([]AttendanceRecord, error) {
		idx := -1
		for i := range existing {
			if existing[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, attendanceerrors.ErrRecordNotFound
		}

		rec = existing[idx]
		day, ok := rec.Day()
		if !ok {
			return nil, attendanceerrors.ErrInvalidDate
		}
		if err := deny(permission.Check(actor.Role, day)); err != nil {
			return nil, err
		}

		rec.IsPresent = *req.IsPresent
		merged := Reconcile(existing, []AttendanceRecord{rec})
		total = len(merged)
		return merged, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, attendanceerrors.ErrPermissionDenied):
			s.logger.Warn("set presence denied", zap.String("request_id", rid), zap.Error(err))
		case errors.Is(err, kvstore.ErrStorageRead), errors.Is(err, kvstore.ErrStorageWrite):
			s.logger.Error("set presence persist failed", zap.String("request_id", rid), zap.Error(err))
		}
		return AttendanceRecord{}, err
	}

	s.publish(ctx, actor, events.SourcePresence, []AttendanceRecord{rec}, total)
	s.logger.Info("set presence success",
		zap.String("request_id", rid),
		zap.String("record_id", rec.ID),
		zap.Bool("is_present", rec.IsPresent),
	)
	return rec, nil
}

func (s *service) Import(ctx context.Context, actor permission.Actor, req ImportRequest) (ReconcileResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("import attendance requested",
		zap.String("request_id", rid),
		zap.String("role", actor.Role.String()),
		zap.Int("count", len(req.Records)),
	)

	if len(req.Records) == 0 {
		return ReconcileResponse{Records: []AttendanceRecord{}}, nil
	}

	ids := make([]string, 0, len(req.Records))
	seen := make(map[string]struct{}, len(req.Records))
	for _, r := range req.Records {
		day, err := parseDate(r.Date)
		if err != nil {
			return ReconcileResponse{}, err
		}
		if err := deny(permission.Check(actor.Role, day)); err != nil {
			s.logger.Warn("import attendance denied", zap.String("request_id", rid), zap.Error(err))
			return ReconcileResponse{}, err
		}
		if _, ok := seen[r.StudentID]; !ok {
			seen[r.StudentID] = struct{}{}
			ids = append(ids, r.StudentID)
		}
	}

	known, err := s.students.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("import attendance student lookup failed", zap.String("request_id", rid), zap.Error(err))
		return ReconcileResponse{}, err
	}
	names := make(map[string]string, len(known))
	for _, st := range known {
		names[st.ID] = st.Name
	}

	incoming := make([]AttendanceRecord, 0, len(req.Records))
	for _, r := range req.Records {
		day, _ := parseDate(r.Date)
		rec := AttendanceRecord{
			ID:           r.ID,
			StudentID:    r.StudentID,
			StudentName:  r.StudentName,
			Date:         day.Format(DateLayout),
			IsPresent:    r.IsPresent,
			CheckInTime:  r.CheckInTime,
			CheckOutTime: r.CheckOutTime,
			Notes:        r.Notes,
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.StudentName == "" {
			rec.StudentName = names[r.StudentID]
		}
		incoming = append(incoming, rec)
	}

	total, err := s.merge(ctx, incoming)
	if err != nil {
		s.logger.Error("import attendance persist failed", zap.String("request_id", rid), zap.Error(err))
		return ReconcileResponse{}, err
	}

	s.publish(ctx, actor, events.SourceImport, incoming, total)
	s.logger.Info("import attendance success",
		zap.String("request_id", rid),
		zap.Int("incoming", len(incoming)),
		zap.Int("total", total),
	)
	return ReconcileResponse{Incoming: len(incoming), Total: total, Records: incoming}, nil
}

func (s *service) List(ctx context.Context, actor permission.Actor, f Filter) ([]AttendanceRecord, error) {
	s.logger.Debug("list attendance requested",
		zap.String("role", actor.Role.String()),
		zap.String("search", f.Search),
		zap.Int("student_count", len(f.StudentIDs)),
	)

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		if !errors.Is(err, kvstore.ErrStorageRead) {
			s.logger.Error("list attendance failed", zap.Error(err))
			return nil, err
		}
		s.logger.Warn("list attendance read failed, serving empty list", zap.Error(err))
		records = []AttendanceRecord{}
	}

	out := f.Scope(actor).Apply(records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StudentName < out[j].StudentName
	})
	return out, nil
}

func (s *service) Permissions(_ context.Context, actor permission.Actor) PermissionsResponse {
	today := s.now()
	weekdays := permission.EditableWeekdays(actor.Role)
	names := make([]string, 0, len(weekdays))
	for _, d := range weekdays {
		names = append(names, d.String())
	}
	return PermissionsResponse{
		Role:             actor.Role.String(),
		EditableWeekdays: names,
		Today:            today.Format(DateLayout),
		CanWriteToday:    permission.CanWrite(actor.Role, today),
	}
}

// merge runs one atomic load-reconcile-save cycle and returns the stored size.
// A read failure aborts instead of reconciling against the empty fallback.
func (s *service) merge(ctx context.Context, incoming []AttendanceRecord) (int, error) {
	total := 0
	err := s.repo.Update(ctx, func(existing []AttendanceRecord) ([]AttendanceRecord, error) {
		merged := Reconcile(existing, incoming)
		total = len(merged)
		return merged, nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *service) resolveStudents(ctx context.Context, req GenerateRequest) ([]student.Student, error) {
	if req.All {
		all, err := s.students.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		if len(all) == 0 {
			return nil, attendanceerrors.ErrEmptySelection
		}
		return all, nil
	}

	if len(req.StudentIDs) == 0 {
		return nil, attendanceerrors.ErrEmptySelection
	}
	return s.students.FindByIDs(ctx, dedupe(req.StudentIDs))
}

// publish runs after the collection was saved, so failures are only logged.
func (s *service) publish(ctx context.Context, actor permission.Actor, source string, incoming []AttendanceRecord, total int) {
	metrics.AttendanceReconciled.WithLabelValues(source).Add(float64(len(incoming)))
	if s.cache != nil {
		if err := s.cache.InvalidateCache(ctx); err != nil {
			s.logger.Warn("attendance cache invalidation failed", zap.String("source", source), zap.Error(err))
		}
	}
	if s.outbox == nil {
		return
	}

	studentIDs := make([]string, 0)
	dates := make([]string, 0)
	seenStudents := map[string]struct{}{}
	seenDates := map[string]struct{}{}
	for _, r := range incoming {
		if _, ok := seenStudents[r.StudentID]; !ok {
			seenStudents[r.StudentID] = struct{}{}
			studentIDs = append(studentIDs, r.StudentID)
		}
		if _, ok := seenDates[r.Date]; !ok {
			seenDates[r.Date] = struct{}{}
			dates = append(dates, r.Date)
		}
	}

	event := events.AttendanceReconciledEvent{
		EventType:  "attendance_reconciled",
		RequestID:  contextutil.GetRequestID(ctx),
		Source:     source,
		ActorID:    actor.ID,
		ActorRole:  actor.Role.String(),
		StudentIDs: studentIDs,
		Dates:      dates,
		Incoming:   len(incoming),
		Total:      total,
		OccurredAt: s.now().UTC(),
	}

	ev, err := kafka.NewOutboxEvent(ctx, "attendance", kvstore.KeyAttendanceRecords, event.EventType, events.AttendanceReconciledTopic, event)
	if err == nil {
		err = s.outbox.Create(ctx, ev)
	}
	if err != nil {
		s.logger.Error("attendance outbox persist failed", zap.String("source", source), zap.Error(err))
		return
	}
	s.logger.Info("attendance outbox queued", zap.String("source", source), zap.Int("incoming", len(incoming)))
}

// checkRange fails when the range holds workdays but none the role may
// write. A weekend-only range is left to the generator, which yields nothing.
func checkRange(role permission.Role, from, to time.Time) error {
	if len(WritableDays(role, from, to)) > 0 {
		return nil
	}
	for d := truncateDay(from); !d.After(truncateDay(to)); d = d.AddDate(0, 0, 1) {
		if permission.IsWorkday(d) {
			return deny(permission.Check(role, d))
		}
	}
	return nil
}

// deny wraps a *permission.DeniedError into the API error.
func deny(err error) error {
	if err == nil {
		return nil
	}
	return apperror.WithCause(attendanceerrors.ErrPermissionDenied, err)
}

func parseDate(v string) (time.Time, error) {
	d, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, apperror.WithCause(attendanceerrors.ErrInvalidDate, err)
	}
	return d, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
