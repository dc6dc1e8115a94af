// Package composer builds the subject line and HTML body for every absence
// email. Every function here is pure: no I/O, no clock reads, no randomness —
// the same inputs always produce the same email.
package composer

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"classcover_backend/internals/helpers/dates"
)

type Recipient struct {
	Name  string
	Email string
}

// AbsenceInfo is the absence-shaped record the composers render. Callers map
// their DB rows into this; the composer never touches the store.
type AbsenceInfo struct {
	AbsentTeacher     string
	SubstituteTeacher string
	LessonDate        time.Time
	Subject           string
	Location          string
	RoomNumber        string
	Notes             string
	LessonPlanURL     string
	Link              string
}

type Email struct {
	Subject string
	HTML    string
}

var bodyTmpl = template.Must(template.New("body").Parse(`<div style="font-family:sans-serif">
<p>Hi {{.Name}},</p>
{{.Lead}}
{{if .Items}}<ul>
{{range .Items}}<li><strong>{{.Subject}}</strong> on {{.Date}} at {{.Location}}{{if .Room}} (room {{.Room}}){{end}} &mdash; {{.Teacher}}{{if .Extra}} &mdash; {{.Extra}}{{end}}{{if .Link}} &mdash; <a href="{{.Link}}">view</a>{{end}}</li>
{{end}}</ul>{{end}}
{{.Tail}}
<p>&mdash; ClassCover</p>
</div>`))

type item struct {
	Subject  string
	Date     string
	Location string
	Room     string
	Teacher  string
	Extra    string
	Link     string
}

type bodyData struct {
	Name  string
	Lead  template.HTML
	Items []item
	Tail  template.HTML
}

func render(d bodyData) string {
	var b strings.Builder
	if err := bodyTmpl.Execute(&b, d); err != nil {
		// The template is static and the data is plain values; an execute
		// error here is a programming bug.
		panic(err)
	}
	return b.String()
}

func itemOf(a AbsenceInfo) item {
	return item{
		Subject:  a.Subject,
		Date:     dates.FormatLong(a.LessonDate),
		Location: a.Location,
		Room:     a.RoomNumber,
		Teacher:  a.AbsentTeacher,
		Link:     a.Link,
	}
}

func para(format string, args ...interface{}) template.HTML {
	return template.HTML("<p>" + template.HTMLEscapeString(fmt.Sprintf(format, args...)) + "</p>")
}

// =======================
// Lifecycle events
// =======================

func AbsenceDeclared(r Recipient, a AbsenceInfo, urgent bool) Email {
	subject := fmt.Sprintf("New absence: %s on %s", a.Subject, dates.FormatLong(a.LessonDate))
	lead := para("%s has declared an absence.", a.AbsentTeacher)
	if urgent {
		subject = fmt.Sprintf("URGENT: unfilled absence %s on %s", a.Subject, dates.FormatLong(a.LessonDate))
		lead = para("%s has declared an absence that is coming up soon and still needs a substitute.", a.AbsentTeacher)
	}
	return Email{Subject: subject, HTML: render(bodyData{
		Name: r.Name, Lead: lead, Items: []item{itemOf(a)},
		Tail: para("If you can cover this class, claim it from the dashboard."),
	})}
}

func AbsenceModified(r Recipient, a AbsenceInfo) Email {
	return Email{
		Subject: fmt.Sprintf("Absence updated: %s on %s", a.Subject, dates.FormatLong(a.LessonDate)),
		HTML: render(bodyData{
			Name: r.Name,
			Lead: para("An absence you are involved in has been updated."),
			Items: []item{itemOf(a)},
		}),
	}
}

func AbsenceDeleted(r Recipient, a AbsenceInfo) Email {
	return Email{
		Subject: fmt.Sprintf("Absence deleted: %s on %s", a.Subject, dates.FormatLong(a.LessonDate)),
		HTML: render(bodyData{
			Name: r.Name,
			Lead: para("The following absence has been deleted and no longer needs a substitute."),
			Items: []item{itemOf(a)},
		}),
	}
}

func AbsenceFilled(r Recipient, a AbsenceInfo) Email {
	it := itemOf(a)
	it.Extra = "covered by " + a.SubstituteTeacher
	return Email{
		Subject: fmt.Sprintf("Absence filled: %s on %s", a.Subject, dates.FormatLong(a.LessonDate)),
		HTML: render(bodyData{
			Name: r.Name,
			Lead: para("%s will substitute for the following class.", a.SubstituteTeacher),
			Items: []item{it},
		}),
	}
}

func LessonPlanUploaded(r Recipient, a AbsenceInfo) Email {
	it := itemOf(a)
	it.Link = a.LessonPlanURL
	return Email{
		Subject: fmt.Sprintf("Lesson plan uploaded: %s on %s", a.Subject, dates.FormatLong(a.LessonDate)),
		HTML: render(bodyData{
			Name: r.Name,
			Lead: para("A lesson plan was uploaded for the following class."),
			Items: []item{it},
		}),
	}
}

// =======================
// Reminders & digests
// =======================

func LessonPlanReminder(r Recipient, a AbsenceInfo, urgent bool) Email {
	subject := fmt.Sprintf("Lesson plan reminder: %s on %s", a.Subject, dates.FormatLong(a.LessonDate))
	lead := para("Your upcoming absence still has no lesson plan attached.")
	if urgent {
		subject = fmt.Sprintf("URGENT lesson plan reminder: %s on %s", a.Subject, dates.FormatLong(a.LessonDate))
		lead = para("Your absence is in less than two business days and still has no lesson plan.")
	}
	return Email{Subject: subject, HTML: render(bodyData{
		Name: r.Name, Lead: lead, Items: []item{itemOf(a)},
		Tail: para("Please upload a plan so your substitute knows what to teach."),
	})}
}

func DailyDigest(r Recipient, urgent, nonUrgent []AbsenceInfo) Email {
	items := make([]item, 0, len(urgent)+len(nonUrgent))
	for _, a := range urgent {
		it := itemOf(a)
		it.Extra = "urgent"
		items = append(items, it)
	}
	for _, a := range nonUrgent {
		items = append(items, itemOf(a))
	}
	return Email{
		Subject: "Daily absence digest: classes needing a substitute",
		HTML: render(bodyData{
			Name:  r.Name,
			Lead:  para("These absences were declared in the last day and still need a substitute."),
			Items: items,
		}),
	}
}

func UpcomingClaimedClass(r Recipient, a AbsenceInfo) Email {
	return Email{
		Subject: fmt.Sprintf("Reminder: you are covering %s on %s", a.Subject, dates.FormatLong(a.LessonDate)),
		HTML: render(bodyData{
			Name:  r.Name,
			Lead:  para("You are substituting for the following class on the next school day."),
			Items: []item{itemOf(a)},
		}),
	}
}

func UnfilledOpportunities(r Recipient, list []AbsenceInfo) Email {
	items := make([]item, 0, len(list))
	for _, a := range list {
		items = append(items, itemOf(a))
	}
	return Email{
		Subject: "Unfilled classes in the next three school days",
		HTML: render(bodyData{
			Name:  r.Name,
			Lead:  para("These upcoming classes still need a substitute. Claim one if you are free."),
			Items: items,
		}),
	}
}

func WeeklyFillSummary(r Recipient, list []AbsenceInfo) Email {
	items := make([]item, 0, len(list))
	for _, a := range list {
		items = append(items, itemOf(a))
	}
	return Email{
		Subject: "Your substitute schedule for the coming week",
		HTML: render(bodyData{
			Name:  r.Name,
			Lead:  para("You are covering the following classes over the next week."),
			Items: items,
		}),
	}
}
