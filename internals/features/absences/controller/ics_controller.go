package controller

import (
	"fmt"

	ics "github.com/arran4/golang-ical"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"classcover_backend/internals/features/absences/model"
	helper "classcover_backend/internals/helpers"
)

type ICSController struct {
	DB *gorm.DB
}

func NewICSController(db *gorm.DB) *ICSController {
	return &ICSController{DB: db}
}

// Export renders every absence as an all-day event. The calendar is built on
// demand and never persisted; the :id parameter only names the attachment.
func (ctl *ICSController) Export(c *fiber.Ctx) error {
	feedID := c.Params("id")

	var list []model.AbsenceModel
	if err := ctl.DB.WithContext(c.UserContext()).
		Preload("AbsentTeacher").
		Preload("SubstituteTeacher").
		Preload("Subject").
		Preload("Location").
		Order("absence_lesson_date asc").
		Find(&list).Error; err != nil {
		return helper.ErrorWithDetails(c, fiber.StatusInternalServerError, "Query failed", err.Error())
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ClassCover//Absence Calendar//EN")

	for _, a := range list {
		ev := cal.AddEvent(a.AbsenceID.String() + "@classcover")
		ev.SetAllDayStartAt(a.AbsenceLessonDate)
		ev.SetAllDayEndAt(a.AbsenceLessonDate.AddDate(0, 0, 1))
		ev.SetDtStampTime(a.AbsenceCreatedAt)

		summary := "Absence"
		if a.Subject != nil {
			summary = a.Subject.SubjectAbbreviation
		}
		if a.AbsentTeacher != nil {
			summary += " — " + a.AbsentTeacher.UserName
		}
		ev.SetSummary(summary)
		if a.Location != nil {
			ev.SetLocation(a.Location.LocationName)
		}
		if a.SubstituteTeacher != nil {
			ev.SetDescription("Covered by " + a.SubstituteTeacher.UserName)
		} else {
			ev.SetDescription("Unfilled — needs a substitute")
		}
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, feedID+".ics"))
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.SendString(cal.Serialize())
}
