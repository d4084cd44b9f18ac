package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
	"classconnect/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoLessons    = errors.New("所选时间范围内无课程")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const exportMaxRows = 1000

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel 导出面向导师的课程清单对账
//   - ICS 日历导出供师生双方订阅到日历客户端
//   - 导出以 bytes.Buffer / string 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportLessons 导出课程清单为 Excel
	ExportLessons(ctx context.Context, tutorID string, req *dto.LessonListRequest) (*bytes.Buffer, string, error)
	// ExportCalendar 导出未来课程为 ICS 日历
	ExportCalendar(ctx context.Context, userID, role string) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ExportLessons 导出导师课程清单为 Excel
//
// 输出格式：
//   - 单 Sheet "课程清单"
//   - 列：日期 | 时间 | 科目 | 学生 | 状态
//   - 按 date + start_time 升序（复用列表查询的排序）
func (s *exportService) ExportLessons(ctx context.Context, tutorID string, req *dto.LessonListRequest) (*bytes.Buffer, string, error) {
	filter, err := buildLessonFilter(req)
	if err != nil {
		return nil, "", err
	}

	lessons, _, err := s.repo.Lesson.ListByTutor(ctx, tutorID, filter, 0, exportMaxRows)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(lessons) == 0 {
		return nil, "", ErrExportNoLessons
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "课程清单"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, "C", "D", 18)
	f.SetColWidth(sheetName, "E", "E", 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"日期", "时间", "科目", "学生", "状态"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, 1), h)
		f.SetCellStyle(sheetName, cell(col, 1), cell(col, 1), headerStyle)
	}

	statusNames := map[string]string{
		model.LessonStatusPending:   "待确认",
		model.LessonStatusConfirmed: "已确认",
		model.LessonStatusCompleted: "已完成",
		model.LessonStatusCancelled: "已取消",
	}

	row := 2
	for i := range lessons {
		l := &lessons[i]
		subjectName := ""
		if l.Subject != nil {
			subjectName = l.Subject.Name
		}
		studentName := ""
		if l.Student != nil {
			studentName = l.Student.Name
		}

		f.SetCellValue(sheetName, cell("A", row), l.Date.Format("2006-01-02"))
		f.SetCellValue(sheetName, cell("B", row), fmt.Sprintf("%s-%s", normalizeClock(l.StartTime), normalizeClock(l.EndTime)))
		f.SetCellValue(sheetName, cell("C", row), subjectName)
		f.SetCellValue(sheetName, cell("D", row), studentName)
		f.SetCellValue(sheetName, cell("E", row), statusNames[l.Status])
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课程清单_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ExportCalendar 导出未来 90 天内未取消的课程为 ICS 日历
func (s *exportService) ExportCalendar(ctx context.Context, userID, role string) (string, error) {
	from := time.Now().Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, 90)
	filter := repository.LessonFilter{From: &from, To: &to}

	var lessons []model.Lesson
	var err error
	if role == model.RoleTutor {
		lessons, _, err = s.repo.Lesson.ListByTutor(ctx, userID, filter, 0, exportMaxRows)
	} else {
		lessons, _, err = s.repo.Lesson.ListByStudent(ctx, userID, filter, 0, exportMaxRows)
	}
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//classconnect//backend//ZH")

	for i := range lessons {
		l := &lessons[i]
		if l.Status == model.LessonStatusCancelled {
			continue
		}
		start, err1 := parseClock(l.StartTime)
		end, err2 := parseClock(l.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}

		summary := "辅导课程"
		if l.Subject != nil {
			summary = fmt.Sprintf("辅导课程：%s", l.Subject.Name)
		}
		description := ""
		if role == model.RoleTutor && l.Student != nil {
			description = fmt.Sprintf("学生：%s", l.Student.Name)
		} else if l.Tutor != nil {
			description = fmt.Sprintf("导师：%s", l.Tutor.Name)
		}

		event := cal.AddEvent(fmt.Sprintf("%s@classconnect", l.LessonID))
		event.SetCreatedTime(l.CreatedAt)
		event.SetStartAt(l.Date.Add(time.Duration(start) * time.Minute))
		event.SetEndAt(l.Date.Add(time.Duration(end) * time.Minute))
		event.SetSummary(summary)
		if description != "" {
			event.SetDescription(description)
		}
	}

	return cal.Serialize(), nil
}

// ── 辅助函数 ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
