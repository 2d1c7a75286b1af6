package controllers

import (
	"time"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// DashboardStats is the admin overview.
type DashboardStats struct {
	UsersByRole         map[string]int64 `json:"users_by_role"`
	Groups              int64            `json:"groups"`
	Formations          int64            `json:"formations"`
	PublishedFormations int64            `json:"published_formations"`
	Modules             int64            `json:"modules"`
	PendingApprovals    int64            `json:"pending_approvals"`
	ProspectsThisWeek   int64            `json:"prospects_this_week"`
	UngradedWork        int64            `json:"submissions_awaiting_grade"`
}

// CollectDashboardStats counts the platform totals as of the given time.
func CollectDashboardStats(db *gorm.DB, at time.Time) (DashboardStats, error) {
	stats := DashboardStats{UsersByRole: map[string]int64{
		models.RoleStudent: 0,
		models.RoleTeacher: 0,
		models.RoleAdmin:   0,
	}}

	var roleCounts []struct {
		Role  string
		Total int64
	}
	if err := db.Model(&models.User{}).Select("role, COUNT(*) AS total").
		Where("is_deleted = ?", false).Group("role").Scan(&roleCounts).Error; err != nil {
		return stats, err
	}
	for _, rc := range roleCounts {
		stats.UsersByRole[rc.Role] = rc.Total
	}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Groups, db.Model(&models.Group{}).Where("is_deleted = ?", false)},
		{&stats.Formations, db.Model(&courseModels.Formation{}).Where("is_deleted = ?", false)},
		{&stats.PublishedFormations, db.Model(&courseModels.Formation{}).Where("is_deleted = ? AND is_published = ?", false, true)},
		{&stats.Modules, db.Model(&courseModels.Module{}).Where("is_deleted = ?", false)},
		{&stats.PendingApprovals, db.Model(&courseModels.ModuleApproval{}).Where("status = ?", courseModels.ApprovalPending)},
		{&stats.ProspectsThisWeek, db.Model(&models.Prospect{}).Where("is_deleted = ? AND created_at >= ?", false, now.With(at).BeginningOfWeek())},
		{&stats.UngradedWork, db.Model(&courseModels.ProjectSubmission{}).Where("is_deleted = ? AND status = ?", false, courseModels.SubmissionSubmitted)},
	}
	for _, count := range counts {
		if err := count.query.Count(count.dest).Error; err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// AdminDashboardStats returns the admin overview
func AdminDashboardStats(c *fiber.Ctx) error {
	stats, err := CollectDashboardStats(database.Database.Db, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err, "Failed to fetch dashboard stats!")
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", stats)
}
