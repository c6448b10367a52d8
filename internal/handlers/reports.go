package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"devlink/server/internal/apperr"
	"devlink/server/internal/models"
)

// duplicateReportWindow is how long a repeat report of the same user for
// the same reason is rejected.
const duplicateReportWindow = 24 * time.Hour

// ReportRequest is the report request body
type ReportRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// ReportUser handles POST /user/report/:reportedUserId.
func ReportUser(c *fiber.Ctx) error {
	reporterID := userID(c)
	reportedUserID := c.Params("reportedUserId")

	var req ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, apperr.New(apperr.KindValidation, "Invalid request body"))
	}

	if reportedUserID == reporterID {
		return fail(c, apperr.New(apperr.KindValidation, "You cannot report yourself"))
	}
	if !models.ValidReportReason(req.Reason) {
		return fail(c, apperr.New(apperr.KindValidation, "Invalid report reason"))
	}

	reported, err := stores.Users.FindByID(c.Context(), reportedUserID)
	if err != nil {
		return fail(c, err)
	}
	if reported == nil {
		return fail(c, apperr.New(apperr.KindNotFound, "User not found"))
	}

	since := time.Now().Add(-duplicateReportWindow)
	recent, err := stores.Reports.HasRecent(c.Context(), reporterID, reportedUserID, req.Reason, since)
	if err != nil {
		return fail(c, err)
	}
	if recent {
		return fail(c, apperr.New(apperr.KindConflict, "You have already reported this user recently"))
	}

	report := &models.Report{
		ReporterID:     reporterID,
		ReportedUserID: reportedUserID,
		Reason:         req.Reason,
		Description:    strings.TrimSpace(req.Description),
		Status:         "pending",
	}
	if err := stores.Reports.Create(c.Context(), report); err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    report,
	})
}

// MyReports handles GET /user/reports.
func MyReports(c *fiber.Ctx) error {
	reports, err := stores.Reports.ListByReporter(c.Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, reports)
}
