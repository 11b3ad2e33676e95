package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"nimbusdrive/middleware"
	"nimbusdrive/services"
	"nimbusdrive/utils"

	"github.com/gin-gonic/gin"
)

type FileController struct {
	fileService *services.FileService
	viewService *services.ViewService
}

func NewFileController(fileService *services.FileService, viewService *services.ViewService) *FileController {
	return &FileController{
		fileService: fileService,
		viewService: viewService,
	}
}

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

type shareRequest struct {
	SharedWith []string `json:"sharedWith"`
}

type moveRequest struct {
	ParentID *string `json:"parentId"`
	Location string  `json:"location"`
}

type shortcutRequest struct {
	ParentID *string `json:"parentId"`
}

type detailsRequest struct {
	Description string `json:"description"`
}

type batchRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type batchMoveRequest struct {
	IDs      []string `json:"ids" binding:"required,min=1"`
	ParentID *string  `json:"parentId"`
}

// List runs the view engine for the requested perspective, filters, sort,
// and pagination, and reports facets and storage usage alongside the page.
func (fc *FileController) List(c *gin.Context) {
	principal := c.GetString(middleware.ContextPrincipal)

	query := services.ListQuery{
		View:       c.DefaultQuery("view", services.ViewMyDrive),
		Primary:    c.DefaultQuery("primary", "all"),
		Type:       c.Query("type"),
		People:     c.Query("people"),
		Location:   c.Query("location"),
		Modified:   c.Query("modified"),
		Search:     c.Query("search"),
		AdvName:    c.Query("advName"),
		AdvOwner:   c.Query("advOwner"),
		AdvShared:  c.Query("advShared"),
		AdvContent: c.Query("advContent"),
		Sort:       c.DefaultQuery("sort", "recent"),
		Limit:      parseInt64Query(c, "limit", 20),
		Skip:       parseInt64Query(c, "skip", 0),
	}

	if parentID, ok := c.GetQuery("parentId"); ok {
		query.ParentID = &parentID
	}

	result, err := fc.viewService.ListFiles(c.Request.Context(), principal, query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.ListSuccessResponse(c, "Files retrieved", result.Files, &utils.ListMeta{
		Total:   result.Total,
		Limit:   result.Limit,
		Skip:    result.Skip,
		Facets:  result.Facets,
		Storage: result.Usage,
	})
}

// Folders returns the reduced folder projection for destination pickers.
func (fc *FileController) Folders(c *gin.Context) {
	principal := c.GetString(middleware.ContextPrincipal)

	folders, err := fc.viewService.ListFolders(c.Request.Context(), principal)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Folders retrieved", folders)
}

func (fc *FileController) Create(c *gin.Context) {
	principal := c.GetString(middleware.ContextPrincipal)

	var req services.CreateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Name is required", nil)
		return
	}

	file, err := fc.fileService.Create(c.Request.Context(), principal, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "File created", file)
}

// Upload is the upload-backed create: the blob goes to the content store and
// the metadata row records the returned storage path.
func (fc *FileController) Upload(c *gin.Context) {
	principal := c.GetString(middleware.ContextPrincipal)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "File is required", nil)
		return
	}

	content, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Failed to open uploaded file", nil)
		return
	}
	defer content.Close()

	req := services.UploadRequest{
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
		Name:        c.PostForm("name"),
		Type:        c.PostForm("type"),
		Description: c.PostForm("description"),
	}
	if parentID, ok := c.GetPostForm("parentId"); ok {
		req.ParentID = &parentID
	}

	file, err := fc.fileService.Upload(c.Request.Context(), principal, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "File uploaded", file)
}

func (fc *FileController) Get(c *gin.Context) {
	file, err := fc.fileService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "File retrieved", file)
}

// Download streams blob content. Shortcuts resolve through their target.
func (fc *FileController) Download(c *gin.Context) {
	file, content, err := fc.fileService.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer content.Close()

	downloadName := file.OriginalName
	if downloadName == "" {
		downloadName = file.Name
	}

	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	c.DataFromReader(http.StatusOK, file.SizeBytes, contentType, content, nil)
}

func (fc *FileController) Trash(c *gin.Context) {
	file, err := fc.fileService.Trash(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File moved to trash", file)
}

func (fc *FileController) Restore(c *gin.Context) {
	file, err := fc.fileService.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File restored", file)
}

func (fc *FileController) Star(c *gin.Context) {
	file, err := fc.fileService.ToggleStar(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Star toggled", file)
}

func (fc *FileController) Offline(c *gin.Context) {
	file, err := fc.fileService.ToggleOffline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Offline availability toggled", file)
}

func (fc *FileController) Share(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid share payload", nil)
		return
	}

	file, err := fc.fileService.Share(c.Request.Context(), c.Param("id"), req.SharedWith)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Sharing updated", file)
}

func (fc *FileController) Rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Name is required", nil)
		return
	}

	file, err := fc.fileService.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File renamed", file)
}

func (fc *FileController) Move(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid move payload", nil)
		return
	}

	file, err := fc.fileService.Move(c.Request.Context(), c.Param("id"), req.ParentID, req.Location)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "File moved", file)
}

func (fc *FileController) Copy(c *gin.Context) {
	file, err := fc.fileService.Copy(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, "Copy created", file)
}

func (fc *FileController) Shortcut(c *gin.Context) {
	principal := c.GetString(middleware.ContextPrincipal)

	var req shortcutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid shortcut payload", nil)
		return
	}

	file, err := fc.fileService.CreateShortcut(c.Request.Context(), principal, c.Param("id"), req.ParentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, "Shortcut created", file)
}

func (fc *FileController) Details(c *gin.Context) {
	var req detailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid details payload", nil)
		return
	}

	file, err := fc.fileService.UpdateDescription(c.Request.Context(), c.Param("id"), req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, "Description updated", file)
}

func (fc *FileController) Delete(c *gin.Context) {
	if err := fc.fileService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Batch endpoints apply the single-item operation independently per id and
// report a per-id result; one failure never rolls back its siblings.

func (fc *FileController) BatchTrash(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "At least one id is required", nil)
		return
	}

	results := fc.fileService.TrashMany(c.Request.Context(), req.IDs)
	utils.SuccessResponse(c, "Batch trash completed", results)
}

func (fc *FileController) BatchRestore(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "At least one id is required", nil)
		return
	}

	results := fc.fileService.RestoreMany(c.Request.Context(), req.IDs)
	utils.SuccessResponse(c, "Batch restore completed", results)
}

func (fc *FileController) BatchMove(c *gin.Context) {
	var req batchMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "At least one id is required", nil)
		return
	}

	results := fc.fileService.MoveMany(c.Request.Context(), req.IDs, req.ParentID)
	utils.SuccessResponse(c, "Batch move completed", results)
}

func (fc *FileController) BatchDelete(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "At least one id is required", nil)
		return
	}

	results := fc.fileService.DeleteMany(c.Request.Context(), req.IDs)
	utils.SuccessResponse(c, "Batch delete completed", results)
}

func parseInt64Query(c *gin.Context, key string, fallback int64) int64 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}
