package composer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleAbsence() AbsenceInfo {
	return AbsenceInfo{
		AbsentTeacher:     "Alice Martin",
		SubstituteTeacher: "Bob Chen",
		LessonDate:        time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		Subject:           "Mathematics",
		Location:          "Main Building",
		RoomNumber:        "204",
		Link:              "https://classcover.example/calendar?absence=1",
	}
}

func TestAbsenceDeclared(t *testing.T) {
	e := AbsenceDeclared(Recipient{Name: "Bob Chen"}, sampleAbsence(), false)
	assert.Equal(t, "New absence: Mathematics on September 14, 2026", e.Subject)
	assert.Contains(t, e.HTML, "Hi Bob Chen,")
	assert.Contains(t, e.HTML, "Alice Martin has declared an absence.")
	assert.Contains(t, e.HTML, "September 14, 2026")
	assert.Contains(t, e.HTML, "Main Building")
	assert.Contains(t, e.HTML, "room 204")
}

func TestAbsenceDeclaredUrgent(t *testing.T) {
	e := AbsenceDeclared(Recipient{Name: "Bob Chen"}, sampleAbsence(), true)
	assert.Contains(t, e.Subject, "URGENT")
	assert.Contains(t, e.HTML, "still needs a substitute")
}

func TestAbsenceFilled(t *testing.T) {
	e := AbsenceFilled(Recipient{Name: "Alice Martin"}, sampleAbsence())
	assert.Contains(t, e.Subject, "Absence filled")
	assert.Contains(t, e.HTML, "Bob Chen will substitute")
	assert.Contains(t, e.HTML, "covered by Bob Chen")
}

func TestLessonPlanUploadedLinksToFile(t *testing.T) {
	a := sampleAbsence()
	a.LessonPlanURL = "https://files.example/plan.pdf"
	e := LessonPlanUploaded(Recipient{Name: "Bob Chen"}, a)
	assert.Contains(t, e.HTML, `href="https://files.example/plan.pdf"`)
}

func TestLessonPlanReminderVariants(t *testing.T) {
	std := LessonPlanReminder(Recipient{Name: "Alice Martin"}, sampleAbsence(), false)
	urg := LessonPlanReminder(Recipient{Name: "Alice Martin"}, sampleAbsence(), true)
	assert.NotContains(t, std.Subject, "URGENT")
	assert.Contains(t, urg.Subject, "URGENT")
	assert.Contains(t, urg.HTML, "less than two business days")
}

func TestDailyDigestMarksUrgentItems(t *testing.T) {
	urgent := sampleAbsence()
	later := sampleAbsence()
	later.Subject = "History"
	e := DailyDigest(Recipient{Name: "Bob Chen"}, []AbsenceInfo{urgent}, []AbsenceInfo{later})
	assert.Contains(t, e.HTML, "urgent")
	assert.Contains(t, e.HTML, "Mathematics")
	assert.Contains(t, e.HTML, "History")
}

func TestComposerEscapesHTML(t *testing.T) {
	a := sampleAbsence()
	a.AbsentTeacher = `<script>alert("x")</script>`
	e := AbsenceDeclared(Recipient{Name: "Bob"}, a, false)
	assert.NotContains(t, e.HTML, "<script>")
}

func TestComposersAreDeterministic(t *testing.T) {
	a := sampleAbsence()
	assert.Equal(t, AbsenceModified(Recipient{Name: "X"}, a), AbsenceModified(Recipient{Name: "X"}, a))
}
