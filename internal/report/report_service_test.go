package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"stage-manager/internal/attendance"
	attendancemock "stage-manager/internal/attendance/mock"
	"stage-manager/internal/permission"
	reporterrors "stage-manager/internal/report/errors"
	"stage-manager/internal/shared/kvstore"
	"stage-manager/internal/student"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"
)

var (
	schoolActor  = permission.Actor{ID: "school", Role: permission.RoleSchool}
	studentActor = permission.Actor{ID: "101", Role: permission.RoleStudent}
)

func sampleRecords() []attendance.AttendanceRecord {
	return []attendance.AttendanceRecord{
		{ID: "1", StudentID: "101", StudentName: "Ana Silva", Date: "2024-07-01", IsPresent: true, CheckInTime: "08:00", CheckOutTime: "12:00"},
		{ID: "2", StudentID: "102", StudentName: "Carlos Mendes", Date: "2024-07-01", IsPresent: false, Notes: "Atestado médico"},
		{ID: "3", StudentID: "101", StudentName: "Ana Silva", Date: "2024-07-02", IsPresent: false},
		{ID: "4", StudentID: "102", StudentName: "Carlos Mendes", Date: "2024-07-02", IsPresent: true},
	}
}

func day(v string) *time.Time {
	d, _ := time.Parse(attendance.DateLayout, v)
	return &d
}

func TestSummarize(t *testing.T) {
	resp := summarize(sampleRecords())

	assert.Equal(t, 2, resp.TotalStudents)
	assert.Equal(t, 4, resp.TotalRecords)
	assert.Equal(t, 50, resp.PresenceRate)
	assert.Equal(t, []StudentSummary{
		{StudentID: "101", StudentName: "Ana Silva", Present: 1, Absent: 1},
		{StudentID: "102", StudentName: "Carlos Mendes", Present: 1, Absent: 1},
	}, resp.Students)

	empty := summarize(nil)
	assert.Equal(t, 0, empty.PresenceRate)
	assert.NotNil(t, empty.Students)
}

func TestReportService_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("without redis", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		att := attendancemock.NewMockService(ctrl)
		svc := NewService(att, nil)

		att.EXPECT().List(ctx, schoolActor, attendance.Filter{}).Return(sampleRecords(), nil)

		resp, err := svc.Summary(ctx, schoolActor, attendance.Filter{})

		assert.NoError(t, err)
		assert.Equal(t, 4, resp.TotalRecords)
	})

	t.Run("cache miss stores result", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		att := attendancemock.NewMockService(ctrl)
		rdb, rmock := redismock.NewClientMock()
		svc := NewService(att, rdb)

		f := attendance.Filter{Search: "ana"}
		field := cacheField(f)
		records := sampleRecords()[:1]
		expected, _ := json.Marshal(summarize(records))

		rmock.ExpectHGet(SummaryCacheKey, field).RedisNil()
		att.EXPECT().List(ctx, schoolActor, f).Return(records, nil)
		rmock.ExpectHSet(SummaryCacheKey, field, expected).SetVal(1)
		rmock.ExpectExpire(SummaryCacheKey, summaryTTL).SetVal(true)

		resp, err := svc.Summary(ctx, schoolActor, f)

		assert.NoError(t, err)
		assert.Equal(t, 100, resp.PresenceRate)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})

	t.Run("cache hit skips attendance", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		att := attendancemock.NewMockService(ctrl)
		rdb, rmock := redismock.NewClientMock()
		svc := NewService(att, rdb)

		cached, _ := json.Marshal(SummaryResponse{TotalRecords: 7, Students: []StudentSummary{}})
		rmock.ExpectHGet(SummaryCacheKey, "|||101").SetVal(string(cached))

		resp, err := svc.Summary(ctx, studentActor, attendance.Filter{StudentIDs: []string{"102"}})

		assert.NoError(t, err)
		assert.Equal(t, 7, resp.TotalRecords)
		assert.NoError(t, rmock.ExpectationsWereMet())
	})
}

func TestReportService_InvalidateCache(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	svc := NewService(nil, rdb)

	rmock.ExpectDel(SummaryCacheKey).SetVal(1)

	assert.NoError(t, svc.InvalidateCache(context.Background()))
	assert.NoError(t, rmock.ExpectationsWereMet())

	assert.NoError(t, NewService(nil, nil).InvalidateCache(context.Background()))
}

func TestSummaryCache_ClearedByAttendanceWrites(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	students := student.NewRepository(store)
	_, err := students.Seed(ctx, []student.Student{{ID: "101", Name: "Ana Silva"}})
	assert.NoError(t, err)

	rdb, rmock := redismock.NewClientMock()
	att := attendance.NewServiceWithOutbox(attendance.NewRepository(store), students, nil, NewSummaryCache(rdb))
	svc := NewService(att, rdb)
	field := cacheField(attendance.Filter{})

	empty, _ := json.Marshal(summarize([]attendance.AttendanceRecord{}))
	rmock.ExpectHGet(SummaryCacheKey, field).RedisNil()
	rmock.ExpectHSet(SummaryCacheKey, field, empty).SetVal(1)
	rmock.ExpectExpire(SummaryCacheKey, summaryTTL).SetVal(true)

	before, err := svc.Summary(ctx, schoolActor, attendance.Filter{})
	assert.NoError(t, err)
	assert.Equal(t, 0, before.TotalRecords)

	rmock.ExpectDel(SummaryCacheKey).SetVal(1)
	_, err = att.Register(ctx, schoolActor, attendance.RegisterRequest{StudentID: "101", Date: "2024-07-01"})
	assert.NoError(t, err)

	records, err := att.List(ctx, schoolActor, attendance.Filter{})
	assert.NoError(t, err)
	fresh, _ := json.Marshal(summarize(records))
	rmock.ExpectHGet(SummaryCacheKey, field).RedisNil()
	rmock.ExpectHSet(SummaryCacheKey, field, fresh).SetVal(1)
	rmock.ExpectExpire(SummaryCacheKey, summaryTTL).SetVal(true)

	after, err := svc.Summary(ctx, schoolActor, attendance.Filter{})
	assert.NoError(t, err)
	assert.Equal(t, 1, after.TotalRecords)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestReportService_Export(t *testing.T) {
	ctx := context.Background()
	f := attendance.Filter{From: day("2024-07-01"), To: day("2024-07-05")}

	t.Run("pdf", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		att := attendancemock.NewMockService(ctrl)
		svc := NewService(att, nil)
		att.EXPECT().List(ctx, schoolActor, f).Return(sampleRecords(), nil)

		file, err := svc.Export(ctx, schoolActor, f, "PDF")

		assert.NoError(t, err)
		assert.Equal(t, "relatorio-frequencia.pdf", file.Filename)
		assert.Equal(t, "application/pdf", file.ContentType)
		assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-1.4")))
		assert.Contains(t, string(file.Data), "Per\xedodo: 01/07/2024 a 05/07/2024")
		assert.Contains(t, string(file.Data), "(N\xe3o)")
	})

	t.Run("xlsx", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		att := attendancemock.NewMockService(ctrl)
		svc := NewService(att, nil)
		att.EXPECT().List(ctx, schoolActor, f).Return(sampleRecords(), nil)

		file, err := svc.Export(ctx, schoolActor, f, "xlsx")
		assert.NoError(t, err)
		assert.Equal(t, "relatorio-frequencia.xlsx", file.Filename)

		wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
		assert.NoError(t, err)
		defer func() { _ = wb.Close() }()

		rows, err := wb.GetRows("Frequência")
		assert.NoError(t, err)
		assert.Len(t, rows, 5)
		assert.Equal(t, exportHeader, rows[0])
		assert.Equal(t, []string{"Ana Silva", "01/07/2024", "Sim", "08:00", "12:00", "-"}, rows[1])
		assert.Equal(t, []string{"Carlos Mendes", "01/07/2024", "Não", "-", "-", "Atestado médico"}, rows[2])
	})

	t.Run("unsupported format", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewService(attendancemock.NewMockService(ctrl), nil)

		_, err := svc.Export(ctx, schoolActor, f, "csv")

		assert.True(t, errors.Is(err, reporterrors.ErrUnsupportedFormat))
	})
}

func TestPeriodLine(t *testing.T) {
	assert.Equal(t, "", periodLine(attendance.Filter{From: day("2024-07-01")}))
	assert.Equal(t, "Período: 01/07/2024 a 05/07/2024",
		periodLine(attendance.Filter{From: day("2024-07-01"), To: day("2024-07-05")}))
}

func TestBuildTablePDF_Paginates(t *testing.T) {
	rows := make([][]string, 120)
	for i := range rows {
		rows[i] = []string{"Ana Silva", "01/07/2024", "Sim", "08:00", "12:00", "-"}
	}

	data, err := buildTablePDF(exportTitle, "", rows)

	assert.NoError(t, err)
	assert.Contains(t, string(data), "/Count 3")
	assert.True(t, bytes.HasSuffix(data, []byte("%%EOF")))
}

func TestFitCell(t *testing.T) {
	assert.Equal(t, "Sim", fitCell("Sim", 52))
	long := fitCell("Uma observação muito longa que não cabe na coluna de observações do relatório", 175)
	assert.True(t, len([]rune(long)) <= 37)
	assert.Contains(t, long, "...")
}
