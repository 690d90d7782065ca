package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/buildlane/ifcbridge/internal/db"
	"github.com/buildlane/ifcbridge/internal/queue"
	"github.com/buildlane/ifcbridge/internal/server/middleware"
	"github.com/buildlane/ifcbridge/internal/storage"
	"github.com/buildlane/ifcbridge/pkg/ifc"
	"github.com/buildlane/ifcbridge/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// CreateSplitJobHandler accepts a document upload and queues an
// asynchronous storey-split job. The document is validated before it
// is stored, so a broken file fails fast instead of in the worker.
func CreateSplitJobHandler(c echo.Context) error {
	type createJobResponse struct {
		Message string       `json:"message"`
		Job     *db.SplitJob `json:"job,omitempty"`
	}

	header, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, createJobResponse{
			Message: "No file provided",
		})
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), documentExt) {
		return c.JSON(http.StatusBadRequest, createJobResponse{
			Message: fmt.Sprintf("Invalid file type. Must be a %s file.", documentExt),
		})
	}
	if header.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, createJobResponse{
			Message: "File exceeds the 50MB limit",
		})
	}

	src, err := header.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, createJobResponse{
			Message: "Could not open file",
		})
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, createJobResponse{
			Message: "Could not read file",
		})
	}

	if _, err := ifc.Open(content); err != nil {
		return c.JSON(http.StatusBadRequest, createJobResponse{
			Message: "Could not parse document: " + err.Error(),
		})
	}

	jobID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createJobResponse{
			Message: "Internal server error",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	fileKey, err := storage.PutFile(
		ctx,
		app.S3,
		fmt.Sprintf("jobs/%s", jobID),
		header.Filename,
		"source",
		bytes.NewReader(content),
	)
	if err != nil {
		logger.Error("Failed to upload file", "err", err)
		return c.JSON(http.StatusInternalServerError, createJobResponse{
			Message: "Internal server error",
		})
	}

	q := db.New(app.DBConn)
	job, err := q.CreateSplitJob(ctx, db.CreateSplitJobParams{
		PublicID: jobID,
		FileName: header.Filename,
		FileKey:  fileKey,
	})
	if err != nil {
		logger.Error("Failed to create split job", "err", err)
		return c.JSON(http.StatusInternalServerError, createJobResponse{
			Message: "Internal server error",
		})
	}

	queueData := queue.QueueSplitJobMsg{
		Message:  "Split job created",
		JobID:    jobID,
		FileName: header.Filename,
		FileKey:  fileKey,
	}
	msgBytes, err := json.Marshal(queueData)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createJobResponse{
			Message: "Internal server error",
		})
	}
	if err := queue.PublishFIFO(app.Queue, queue.SplitQueue, msgBytes); err != nil {
		logger.Error("Failed to publish to split_queue", "err", err)
		return c.JSON(http.StatusInternalServerError, createJobResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusAccepted, createJobResponse{
		Message: "Split job created",
		Job:     &job,
	})
}
