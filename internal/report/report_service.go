package report

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"stage-manager/internal/attendance"
	"stage-manager/internal/permission"
	reporterrors "stage-manager/internal/report/errors"
	"stage-manager/internal/shared/apperror"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SummaryCacheKey is a Redis hash holding one field per (actor scope, filter).
const SummaryCacheKey = "reports:summary"

const summaryTTL = 10 * time.Minute

const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"

	exportTitle    = "Relatório de Frequência"
	exportBasename = "relatorio-frequencia"
	displayLayout  = "02/01/2006"
)

var exportHeader = []string{"Nome", "Data", "Presente", "Entrada", "Saída", "Observações"}

//go:generate mockgen -source=report_service.go -destination=mock/report_service_mock.go -package=mock
type Service interface {
	Summary(ctx context.Context, actor permission.Actor, f attendance.Filter) (SummaryResponse, error)
	Export(ctx context.Context, actor permission.Actor, f attendance.Filter, format string) (ExportFile, error)
	InvalidateCache(ctx context.Context) error
}

type service struct {
	attendance attendance.Service
	rdb        *redis.Client
	logger     *zap.Logger
}

func NewService(attendanceService attendance.Service, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	return &service{
		attendance: attendanceService,
		rdb:        rdb,
		logger:     l,
	}
}

func (s *service) Summary(ctx context.Context, actor permission.Actor, f attendance.Filter) (SummaryResponse, error) {
	field := cacheField(f.Scope(actor))

	if s.rdb != nil {
		if cached, err := s.rdb.HGet(ctx, SummaryCacheKey, field).Result(); err == nil {
			var resp SummaryResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	records, err := s.attendance.List(ctx, actor, f)
	if err != nil {
		return SummaryResponse{}, err
	}
	resp := summarize(records)

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.HSet(ctx, SummaryCacheKey, field, data).Err(); err != nil {
				s.logger.Warn("cache report summary failed", zap.Error(err))
			} else {
				s.rdb.Expire(ctx, SummaryCacheKey, summaryTTL)
			}
		}
	}

	return resp, nil
}

func (s *service) Export(ctx context.Context, actor permission.Actor, f attendance.Filter, format string) (ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatPDF && format != FormatXLSX {
		return ExportFile{}, reporterrors.ErrUnsupportedFormat
	}

	records, err := s.attendance.List(ctx, actor, f)
	if err != nil {
		return ExportFile{}, err
	}
	rows := exportRows(records)

	var file ExportFile
	switch format {
	case FormatPDF:
		data, err := buildTablePDF(exportTitle, periodLine(f), rows)
		if err != nil {
			s.logger.Error("render pdf report failed", zap.Error(err))
			return ExportFile{}, apperror.WithCause(reporterrors.ErrRenderFailed, err)
		}
		file = ExportFile{Filename: exportBasename + ".pdf", ContentType: "application/pdf", Data: data}
	case FormatXLSX:
		data, err := buildWorkbook(exportHeader, rows)
		if err != nil {
			s.logger.Error("render xlsx report failed", zap.Error(err))
			return ExportFile{}, apperror.WithCause(reporterrors.ErrRenderFailed, err)
		}
		file = ExportFile{
			Filename:    exportBasename + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}
	}

	s.logger.Info("report exported",
		zap.String("format", format),
		zap.String("role", actor.Role.String()),
		zap.Int("records", len(records)),
	)
	return file, nil
}

func (s *service) InvalidateCache(ctx context.Context) error {
	return NewSummaryCache(s.rdb).InvalidateCache(ctx)
}

// SummaryCache drops every cached summary. It needs only Redis, so attendance
// writers can hold one without depending on the report service.
type SummaryCache struct {
	rdb *redis.Client
}

func NewSummaryCache(rdb *redis.Client) *SummaryCache {
	return &SummaryCache{rdb: rdb}
}

func (c *SummaryCache) InvalidateCache(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, SummaryCacheKey).Err()
}

// summarize counts presences per student, in first-seen order.
func summarize(records []attendance.AttendanceRecord) SummaryResponse {
	index := map[string]int{}
	students := []StudentSummary{}
	present := 0

	for _, r := range records {
		i, ok := index[r.StudentID]
		if !ok {
			i = len(students)
			index[r.StudentID] = i
			students = append(students, StudentSummary{StudentID: r.StudentID, StudentName: r.StudentName})
		}
		if r.IsPresent {
			students[i].Present++
			present++
		} else {
			students[i].Absent++
		}
	}

	rate := 0
	if len(records) > 0 {
		rate = int(math.Round(float64(present) / float64(len(records)) * 100))
	}
	return SummaryResponse{
		Students:      students,
		TotalStudents: len(students),
		TotalRecords:  len(records),
		PresenceRate:  rate,
	}
}

func exportRows(records []attendance.AttendanceRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		present := "Não"
		if r.IsPresent {
			present = "Sim"
		}
		rows = append(rows, []string{
			r.StudentName,
			displayDate(r.Date),
			present,
			orDash(r.CheckInTime),
			orDash(r.CheckOutTime),
			orDash(r.Notes),
		})
	}
	return rows
}

// periodLine is only printed when both bounds are set.
func periodLine(f attendance.Filter) string {
	if f.From == nil || f.To == nil {
		return ""
	}
	return fmt.Sprintf("Período: %s a %s", f.From.Format(displayLayout), f.To.Format(displayLayout))
}

func displayDate(v string) string {
	d, err := time.Parse(attendance.DateLayout, v)
	if err != nil {
		return orDash(v)
	}
	return d.Format(displayLayout)
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func cacheField(f attendance.Filter) string {
	ids := append([]string(nil), f.StudentIDs...)
	sort.Strings(ids)

	var from, to string
	if f.From != nil {
		from = f.From.Format(attendance.DateLayout)
	}
	if f.To != nil {
		to = f.To.Format(attendance.DateLayout)
	}
	return strings.Join([]string{from, to, strings.ToLower(strings.TrimSpace(f.Search)), strings.Join(ids, ",")}, "|")
}
