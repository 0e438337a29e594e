package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"civiclens-be/logger"
	"civiclens-be/models"
	"civiclens-be/repository"
	"civiclens-be/services"
	"civiclens-be/storage"
	"civiclens-be/utils"
)

type IssueController struct {
	issues *services.IssueService
}

func NewIssueController(issues *services.IssueService) *IssueController {
	return &IssueController{issues: issues}
}

type submitIssueRequest struct {
	Description string `form:"description" json:"description" binding:"required,min=10"`
	Category    string `form:"category" json:"category" binding:"required,issuecategory"`
	Address     string `form:"address" json:"address" binding:"required"`
	PhotoURL    string `form:"photoUrl" json:"photoUrl" binding:"omitempty,url"`
	Lat         string `form:"lat" json:"lat" binding:"omitempty,latitude"`
	Lng         string `form:"lng" json:"lng" binding:"omitempty,longitude"`
}

type submitResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
	Issue   *models.IssueReport `json:"issue,omitempty"`
}

func parseCoordinate(v string) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

// SubmitIssue handles the public report form.
func (ctl *IssueController) SubmitIssue(c *gin.Context) {
	var req submitIssueRequest
	if err := c.ShouldBind(&req); err != nil {
		fields := utils.FieldErrors(err)
		if fields == nil {
			fields = map[string][]string{}
		}
		ctl.submitFailed(c, http.StatusBadRequest, utils.ValidationFailedMessage, fields)
		return
	}

	in := services.SubmitInput{
		Description: req.Description,
		Category:    models.IssueCategory(req.Category),
		Address:     req.Address,
		PhotoURL:    req.PhotoURL,
		Lat:         parseCoordinate(req.Lat),
		Lng:         parseCoordinate(req.Lng),
	}

	fileHeader, err := c.FormFile("photo")
	switch {
	case err == nil:
		file, err := fileHeader.Open()
		if err != nil {
			ctl.submitFailed(c, http.StatusBadRequest, "Could not read the uploaded photo.", map[string][]string{})
			return
		}
		defer file.Close()
		in.Photo = &services.PhotoUpload{
			Reader:      file,
			Name:        fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		ctl.submitFailed(c, http.StatusBadRequest, "Could not read the uploaded photo.", map[string][]string{})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ctl.issues.Submit(ctx, in)
	if err != nil {
		var invalid *storage.ValidationError
		switch {
		case errors.As(err, &invalid):
			ctl.submitFailed(c, http.StatusBadRequest, utils.ValidationFailedMessage, map[string][]string{
				"photo": {invalid.Message},
			})
		case errors.Is(err, repository.ErrBackendNotConfigured), errors.Is(err, services.ErrPhotoStorageUnavailable):
			ctl.submitFailed(c, http.StatusServiceUnavailable, backendNotConfigured, map[string][]string{})
		default:
			logger.Log.Errorf("Error submitting issue: %v", err)
			ctl.submitFailed(c, http.StatusInternalServerError, fmt.Sprintf("Submission failed: %v", err), map[string][]string{})
		}
		return
	}

	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/?submitted=1")
		return
	}
	c.JSON(http.StatusCreated, submitResponse{
		Success: true,
		Message: "Issue reported successfully! Our team will review it shortly.",
		Errors:  map[string][]string{},
		Issue:   issue,
	})
}

func (ctl *IssueController) submitFailed(c *gin.Context, status int, message string, fields map[string][]string) {
	if wantsHTML(c) {
		c.HTML(status, "index.html", gin.H{
			"Categories": categoryOptions(),
			"Message":    message,
			"Errors":     fields,
		})
		return
	}
	c.JSON(status, submitResponse{Success: false, Message: message, Errors: fields})
}

// ListIssues returns a filtered, sorted page of reports for the dashboard.
func (ctl *IssueController) ListIssues(c *gin.Context) {
	filter := models.IssueFilter{
		Search: c.Query("search"),
		Sort:   models.IssueSort(c.DefaultQuery("sort", string(models.SortNewest))),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	fields := map[string][]string{}
	if v := c.Query("status"); v != "" && v != "all" {
		filter.Status = models.IssueStatus(v)
		if !filter.Status.IsValid() {
			fields["status"] = []string{"Invalid status."}
		}
	}
	if v := c.Query("priority"); v != "" && v != "all" {
		filter.Priority = models.IssuePriority(v)
		if !filter.Priority.IsValid() {
			fields["priority"] = []string{"Invalid priority."}
		}
	}
	if v := c.Query("category"); v != "" && v != "all" {
		filter.Category = models.IssueCategory(v)
		if !filter.Category.IsValid() {
			fields["category"] = []string{"Please select a category."}
		}
	}
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter", "errors": fields})
		return
	}
	filter.Normalize()

	ctx, cancel := requestContext(c)
	defer cancel()

	issues, total, err := ctl.issues.List(ctx, filter)
	if err != nil {
		logger.Log.Errorf("Error fetching issues: %v", err)
		respondStoreError(c, err, "Failed to retrieve issues")
		return
	}
	if issues == nil {
		issues = []models.IssueReport{}
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	c.JSON(http.StatusOK, gin.H{
		"issues":      issues,
		"totalIssues": total,
		"totalPages":  totalPages,
		"currentPage": filter.Page,
	})
}

func (ctl *IssueController) GetIssue(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ctl.issues.Get(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "Failed to retrieve issue")
		return
	}
	c.JSON(http.StatusOK, issue)
}

type updateStatusRequest struct {
	ID     string `json:"id" form:"id" binding:"required"`
	Status string `json:"status" form:"status" binding:"required,issuestatus"`
}

// UpdateIssueStatus lets staff set any of the four statuses.
func (ctl *IssueController) UpdateIssueStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid data provided.",
			"errors":  utils.FieldErrors(err),
		})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	status := models.IssueStatus(req.Status)
	if err := ctl.issues.UpdateStatus(ctx, req.ID, status); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid data provided."})
		case errors.Is(err, repository.ErrIssueNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Issue not found"})
		case errors.Is(err, repository.ErrBackendNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": backendNotConfigured})
		default:
			logger.Log.Errorf("Error updating issue %s: %v", req.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": fmt.Sprintf("Failed to update status: %v", err),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Status updated to %s", status),
	})
}

// GetSummary returns dashboard counters.
func (ctl *IssueController) GetSummary(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	summary, err := ctl.issues.Summary(ctx)
	if err != nil {
		logger.Log.Errorf("Error building summary: %v", err)
		respondStoreError(c, err, "Failed to fetch summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

type selectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func categoryOptions() []selectOption {
	out := make([]selectOption, 0, len(models.Categories))
	for _, cat := range models.Categories {
		out = append(out, selectOption{Value: string(cat), Label: cat.Label()})
	}
	return out
}

// GetMeta lists the enum values the form and dashboard offer.
func GetMeta(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": categoryOptions(),
		"statuses":   models.Statuses,
		"priorities": models.Priorities,
	})
}
