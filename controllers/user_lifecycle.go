package controllers

import (
	"time"

	"gorm.io/gorm"

	"github.com/moaboard/moaboard/models"
	"github.com/moaboard/moaboard/utils"
)

// deleteUserCascade removes an account in one transaction: every post the
// user authored keeps its row but has the denormalized author nickname
// rewritten to the withdrawal sentinel, a withdrawal record is written when
// reasons were given, the user's like/bookmark rows go away with the account,
// and finally the user row itself is deleted. Like counters on posts the
// user had liked are deliberately not compensated; that drift is accepted.
// Comments keep the nickname they carried, only posts are rewritten.
//
// Session revocation happens after the transaction commits, in the caller:
// the database is authoritative, a lingering token only survives until the
// revocation mark lands.
func deleteUserCascade(db *gorm.DB, user *models.User, reasons []string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).
			Where("author_id = ?", user.ID).
			Update("author_nickname", models.WithdrawnNickname).Error; err != nil {
			return err
		}
		if len(reasons) > 0 {
			record := models.WithdrawalRecord{
				UserID:    user.ID,
				Email:     user.Email,
				Nickname:  user.Nickname,
				Reasons:   utils.EncodeStringList(reasons),
				DeletedAt: time.Now(),
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, user.ID).Error
	})
}
