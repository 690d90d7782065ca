package routes

import (
	"errors"
	"net/http"

	"github.com/buildlane/ifcbridge/internal/db"
	"github.com/buildlane/ifcbridge/internal/server/middleware"
	"github.com/buildlane/ifcbridge/internal/storage"
	"github.com/buildlane/ifcbridge/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// GetSplitJobHandler reports a split job's state. A finished job also
// carries a presigned download link for its archive.
func GetSplitJobHandler(c echo.Context) error {
	type getJobParams struct {
		JobID string `param:"id" validate:"required"`
	}

	type getJobResponse struct {
		Message     string  `json:"message,omitempty"`
		JobID       string  `json:"job_id,omitempty"`
		FileName    string  `json:"file_name,omitempty"`
		Status      string  `json:"status,omitempty"`
		StoreyCount *int32  `json:"storey_count,omitempty"`
		Error       *string `json:"error,omitempty"`
		DownloadURL *string `json:"download_url,omitempty"`
	}

	params := new(getJobParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getJobResponse{
			Message: "Invalid request parameters",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getJobResponse{
			Message: "Invalid request parameters",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	job, err := db.New(app.DBConn).GetSplitJob(ctx, params.JobID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, getJobResponse{
				Message: "Job not found",
			})
		}
		logger.Error("Failed to get split job", "job_id", params.JobID, "err", err)
		return c.JSON(http.StatusInternalServerError, getJobResponse{
			Message: "Internal server error",
		})
	}

	resp := getJobResponse{
		JobID:    job.PublicID,
		FileName: job.FileName,
		Status:   job.Status,
	}
	if job.StoreyCount.Valid {
		resp.StoreyCount = &job.StoreyCount.Int32
	}
	if job.ErrorMessage.Valid {
		resp.Error = &job.ErrorMessage.String
	}

	if job.Status == db.JobStatusDone && job.ResultKey.Valid {
		link, err := storage.GenerateDownloadLink(ctx, app.S3, job.ResultKey.String)
		if err != nil {
			logger.Error("Failed to generate download link", "job_id", job.PublicID, "err", err)
		} else {
			resp.DownloadURL = &link
		}
	}

	return c.JSON(http.StatusOK, resp)
}
