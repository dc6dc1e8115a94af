package service

import (
	"context"
	"log"

	"classcover_backend/internals/configs"
	"classcover_backend/internals/features/absences/model"
	"classcover_backend/internals/features/emails/composer"
	"classcover_backend/internals/features/emails/mailer"
	"classcover_backend/internals/features/emails/recipients"
	"classcover_backend/internals/helpers/dates"
)

func (s *AbsenceService) absenceInfo(a *model.AbsenceModel) composer.AbsenceInfo {
	info := composer.AbsenceInfo{
		LessonDate: a.AbsenceLessonDate,
		Notes:      a.AbsenceNotes,
		Link:       configs.AppBaseURL + "/calendar?absence=" + a.AbsenceID.String(),
	}
	if a.AbsenceRoomNumber != nil {
		info.RoomNumber = *a.AbsenceRoomNumber
	}
	if a.AbsentTeacher != nil {
		info.AbsentTeacher = a.AbsentTeacher.UserName
	}
	if a.SubstituteTeacher != nil {
		info.SubstituteTeacher = a.SubstituteTeacher.UserName
	}
	if a.Subject != nil {
		info.Subject = a.Subject.SubjectName
	}
	if a.Location != nil {
		info.Location = a.Location.LocationName
	}
	if a.LessonPlan != nil {
		info.LessonPlanURL = a.LessonPlan.LessonPlanURL
	}
	return info
}

// isUrgent: lesson date within the next two business days and still unfilled.
func (s *AbsenceService) isUrgent(a *model.AbsenceModel) bool {
	if a.IsFilled() {
		return false
	}
	cutoff := dates.UTCDateWithoutTime(s.Now(), urgentWindowBusinessDays)
	return !a.AbsenceLessonDate.After(cutoff)
}

func (s *AbsenceService) sendOne(ctx context.Context, event string, msg mailer.Message) {
	if s.Sender == nil {
		return
	}
	if res := s.Sender.Send(ctx, msg); !res.Success {
		log.Printf("[NOTIFY] %s email failed: %v", event, res.Err)
	}
}

// Declared: urgent → every teacher, cc admins; otherwise the subject's
// mailing-list subscribers, cc admins.
func (s *AbsenceService) notifyDeclared(ctx context.Context, a *model.AbsenceModel) {
	info := s.absenceInfo(a)
	urgent := s.isUrgent(a)

	var (
		audience []string
		err      error
	)
	if urgent {
		teachers, terr := recipients.AllTeachers(s.DB.WithContext(ctx))
		err = terr
		audience = recipients.Emails(teachers)
	} else {
		subs, serr := recipients.SubscribersForSubject(s.DB.WithContext(ctx), a.AbsenceSubjectID)
		err = serr
		audience = recipients.Emails(subs)
	}
	if err != nil {
		log.Printf("[NOTIFY] declared recipient query failed: %v", err)
		return
	}

	email := composer.AbsenceDeclared(composer.Recipient{Name: "there"}, info, urgent)
	s.sendOne(ctx, "absence declared", mailer.Message{
		Bcc:     audience,
		Cc:      recipients.AdminEmails(s.DB.WithContext(ctx)),
		Subject: email.Subject,
		HTML:    email.HTML,
	})
}

// Modified: absent teacher + substitute (if any), cc admins.
func (s *AbsenceService) notifyModified(ctx context.Context, a *model.AbsenceModel) {
	info := s.absenceInfo(a)
	var to []string
	name := "there"
	if a.AbsentTeacher != nil {
		to = append(to, a.AbsentTeacher.UserEmail)
		name = a.AbsentTeacher.UserName
	}
	if a.SubstituteTeacher != nil {
		to = append(to, a.SubstituteTeacher.UserEmail)
	}
	email := composer.AbsenceModified(composer.Recipient{Name: name}, info)
	s.sendOne(ctx, "absence modified", mailer.Message{
		To:      to,
		Cc:      recipients.AdminEmails(s.DB.WithContext(ctx)),
		Subject: email.Subject,
		HTML:    email.HTML,
	})
}

// Deleted: absent teacher, cc admins and substitute (if any).
func (s *AbsenceService) notifyDeleted(ctx context.Context, a *model.AbsenceModel) {
	info := s.absenceInfo(a)
	var to []string
	name := "there"
	if a.AbsentTeacher != nil {
		to = append(to, a.AbsentTeacher.UserEmail)
		name = a.AbsentTeacher.UserName
	}
	cc := recipients.AdminEmails(s.DB.WithContext(ctx))
	if a.SubstituteTeacher != nil {
		cc = append(cc, a.SubstituteTeacher.UserEmail)
	}
	email := composer.AbsenceDeleted(composer.Recipient{Name: name}, info)
	s.sendOne(ctx, "absence deleted", mailer.Message{
		To:      to,
		Cc:      cc,
		Subject: email.Subject,
		HTML:    email.HTML,
	})
}

// Filled: claiming teacher, cc admins and the absent teacher.
func (s *AbsenceService) notifyFilled(ctx context.Context, a *model.AbsenceModel) {
	info := s.absenceInfo(a)
	var to []string
	name := "there"
	if a.SubstituteTeacher != nil {
		to = append(to, a.SubstituteTeacher.UserEmail)
		name = a.SubstituteTeacher.UserName
	}
	cc := recipients.AdminEmails(s.DB.WithContext(ctx))
	if a.AbsentTeacher != nil {
		cc = append(cc, a.AbsentTeacher.UserEmail)
	}
	email := composer.AbsenceFilled(composer.Recipient{Name: name}, info)
	s.sendOne(ctx, "absence filled", mailer.Message{
		To:      to,
		Cc:      cc,
		Subject: email.Subject,
		HTML:    email.HTML,
	})
}

// Lesson plan uploaded: substitute teacher, cc the absent teacher.
func (s *AbsenceService) notifyLessonPlanUploaded(ctx context.Context, a *model.AbsenceModel) {
	if a.SubstituteTeacher == nil {
		return
	}
	info := s.absenceInfo(a)
	email := composer.LessonPlanUploaded(recipients.ToRecipient(*a.SubstituteTeacher), info)
	var cc []string
	if a.AbsentTeacher != nil {
		cc = append(cc, a.AbsentTeacher.UserEmail)
	}
	s.sendOne(ctx, "lesson plan uploaded", mailer.Message{
		To:      []string{a.SubstituteTeacher.UserEmail},
		Cc:      cc,
		Subject: email.Subject,
		HTML:    email.HTML,
	})
}
