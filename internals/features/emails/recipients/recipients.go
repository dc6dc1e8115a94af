// Package recipients resolves who gets which absence emails. All queries
// exclude deactivated accounts.
package recipients

import (
	"gorm.io/gorm"

	"classcover_backend/internals/constants"
	"classcover_backend/internals/features/emails/composer"
	subjectModel "classcover_backend/internals/features/school/subjects/model"
	userModel "classcover_backend/internals/features/users/model"
)

func ToRecipient(u userModel.UserModel) composer.Recipient {
	return composer.Recipient{Name: u.UserName, Email: u.UserEmail}
}

func Emails(users []userModel.UserModel) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.UserEmail)
	}
	return out
}

func deliverable(db *gorm.DB) *gorm.DB {
	return db.Where("user_status <> ?", constants.StatusDeactivated)
}

func AllTeachers(db *gorm.DB) ([]userModel.UserModel, error) {
	var users []userModel.UserModel
	err := deliverable(db).
		Where("user_role = ?", constants.RoleTeacher).
		Find(&users).Error
	return users, err
}

func Admins(db *gorm.DB) ([]userModel.UserModel, error) {
	var users []userModel.UserModel
	err := deliverable(db).
		Where("user_role = ?", constants.RoleAdmin).
		Find(&users).Error
	return users, err
}

func AdminEmails(db *gorm.DB) []string {
	admins, err := Admins(db)
	if err != nil {
		return nil
	}
	return Emails(admins)
}

// SubscribersForSubject returns the teachers on a subject's mailing list.
func SubscribersForSubject(db *gorm.DB, subjectID interface{}) ([]userModel.UserModel, error) {
	var users []userModel.UserModel
	err := deliverable(db).
		Joins("JOIN mailing_lists ON mailing_lists.mailing_list_user_id = users.user_id").
		Where("mailing_lists.mailing_list_subject_id = ?", subjectID).
		Find(&users).Error
	return users, err
}

// SubscribedSubjectIDs maps every user to the set of subject IDs they follow.
func SubscribedSubjectIDs(db *gorm.DB) (map[string]map[string]bool, error) {
	var rows []subjectModel.MailingListModel
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]map[string]bool)
	for _, r := range rows {
		uid := r.MailingListUserID.String()
		if out[uid] == nil {
			out[uid] = make(map[string]bool)
		}
		out[uid][r.MailingListSubjectID.String()] = true
	}
	return out, nil
}
