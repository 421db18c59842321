package moderation

import (
	"fmt"
	"strings"
	"time"

	"project-portal/internal/global/database"
	"project-portal/internal/global/response"
	"project-portal/internal/global/sentry/tracing"
	"project-portal/internal/model"
	"project-portal/tools"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "审核队列"

type exportRow struct {
	ID          uint       `excel:"编号"`
	Title       string     `excel:"标题"`
	Subject     string     `excel:"学科"`
	Teacher     string     `excel:"指导教师"`
	Authors     string     `excel:"作者"`
	Year        int        `excel:"年份"`
	Status      string     `excel:"状态"`
	Comment     string     `excel:"审核意见"`
	FileName    string     `excel:"附件"`
	CreatedAt   time.Time  `excel:"提交时间"`
	ModeratedAt *time.Time `excel:"审核时间"`
}

func newExportRow(p *model.Project) exportRow {
	row := exportRow{
		ID:          p.ID,
		Title:       p.Title,
		Year:        p.Year,
		Status:      string(p.Status),
		Comment:     p.ModerationComment,
		FileName:    p.FileName,
		CreatedAt:   p.CreatedAt,
		ModeratedAt: p.ModeratedAt,
	}
	if p.Subject != nil {
		row.Subject = p.Subject.Name
	}
	if p.Teacher != nil {
		row.Teacher = p.Teacher.DisplayName()
	}
	authors := make([]string, 0, len(p.Students))
	for i := range p.Students {
		authors = append(authors, p.Students[i].User.FullName())
	}
	row.Authors = strings.Join(authors, ", ")
	return row
}

// Export 把某个状态的项目导出为 xlsx
func Export(c *gin.Context) {
	status, err := queueStatus(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var projects []model.Project
	if err := database.DB.WithContext(c.Request.Context()).
		Scopes(model.WithCard, model.Newest).
		Where("project.status = ?", status).
		Find(&projects).Error; err != nil {
		log.Error("查询导出项目失败", "error", err, "status", status)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	rows := make([]exportRow, 0, len(projects))
	for i := range projects {
		rows = append(rows, newExportRow(&projects[i]))
	}

	span := tracing.StartSpan(c, "excel.export", "导出审核队列")
	span.SetData("rows", len(rows))
	defer span.Finish()

	f := excelize.NewFile()
	defer f.Close()
	if err := tools.ExportToExcel(f, exportSheet, rows); err != nil {
		log.Error("生成 Excel 失败", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		log.Warn("删除默认工作表失败", "error", err)
	}
	if idx, err := f.GetSheetIndex(exportSheet); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		log.Error("写出 Excel 失败", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}

	name := fmt.Sprintf("moderation-%s-%s.xlsx", status, time.Now().Format("20060102"))
	tools.SendBytes(c, buf.Bytes(), name, tools.ExcelContentType)
}
