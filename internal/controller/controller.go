package controller

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mkovalev/filevault/internal/models"
	"github.com/mkovalev/filevault/internal/service"
	"github.com/mkovalev/filevault/internal/util"
)

type Controller struct {
	log   *zap.SugaredLogger
	auth  *service.AuthService
	files *service.FileService
}

func NewController(log *zap.SugaredLogger, auth *service.AuthService, files *service.FileService) *Controller {
	return &Controller{
		log:   log,
		auth:  auth,
		files: files,
	}
}

// (GET /api/ping).
func (c *Controller) CheckServer(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, "ok")
}

// (POST /api/auth/signup).
func (c *Controller) SignUp(ctx echo.Context) error {
	var req models.SignUpRequest
	if err := ctx.Bind(&req); err != nil {
		return util.NewResponseError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := c.auth.SignUp(ctx.Request().Context(), req, deviceContext(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, resp)
}

// (POST /api/auth/signin).
func (c *Controller) SignIn(ctx echo.Context) error {
	var req models.SignInRequest
	if err := ctx.Bind(&req); err != nil {
		return util.NewResponseError(http.StatusBadRequest, "invalid request body")
	}
	if req.ID == "" || req.Password == "" {
		return util.NewResponseError(http.StatusBadRequest, "id and password are required")
	}

	resp, err := c.auth.SignIn(ctx.Request().Context(), req, deviceContext(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}

// (POST /api/auth/refresh).
func (c *Controller) Refresh(ctx echo.Context) error {
	var req models.RefreshRequest
	if err := ctx.Bind(&req); err != nil {
		return util.NewResponseError(http.StatusBadRequest, "invalid request body")
	}
	if req.RefreshToken == "" {
		return util.NewResponseError(http.StatusBadRequest, "refresh_token is required")
	}

	pair, err := c.auth.Refresh(ctx.Request().Context(), req.RefreshToken, deviceContext(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, pair)
}

// (POST /api/auth/logout).
func (c *Controller) Logout(ctx echo.Context) error {
	if err := c.auth.Logout(ctx.Request().Context(), userID(ctx), deviceContext(ctx)); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// (GET /api/auth/me).
func (c *Controller) Me(ctx echo.Context) error {
	user, err := c.auth.UserInfo(ctx.Request().Context(), userID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, user)
}

// (POST /api/files).
func (c *Controller) UploadFile(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return util.NewResponseError(http.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > c.files.MaxUploadSize() {
		return util.NewResponseError(http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return util.NewResponseError(http.StatusBadRequest, "failed to read uploaded file")
	}
	defer src.Close()

	file, err := c.files.Save(
		ctx.Request().Context(),
		userID(ctx),
		fileHeader.Filename,
		fileHeader.Header.Get(echo.HeaderContentType),
		src,
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, file)
}

// (PUT /api/files/:id).
func (c *Controller) UpdateFile(ctx echo.Context) error {
	id, err := fileID(ctx)
	if err != nil {
		return err
	}
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return util.NewResponseError(http.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > c.files.MaxUploadSize() {
		return util.NewResponseError(http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return util.NewResponseError(http.StatusBadRequest, "failed to read uploaded file")
	}
	defer src.Close()

	file, err := c.files.Update(
		ctx.Request().Context(),
		userID(ctx),
		id,
		fileHeader.Filename,
		fileHeader.Header.Get(echo.HeaderContentType),
		src,
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, file)
}

// (GET /api/files?page=&list_size=).
func (c *Controller) ListFiles(ctx echo.Context) error {
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	listSize, _ := strconv.Atoi(ctx.QueryParam("list_size"))

	files, err := c.files.List(ctx.Request().Context(), userID(ctx), page, listSize)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, files)
}

// (GET /api/files/:id).
func (c *Controller) GetFile(ctx echo.Context) error {
	id, err := fileID(ctx)
	if err != nil {
		return err
	}
	file, err := c.files.Get(ctx.Request().Context(), userID(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, file)
}

// (GET /api/files/:id/download).
func (c *Controller) DownloadFile(ctx echo.Context) error {
	id, err := fileID(ctx)
	if err != nil {
		return err
	}
	file, err := c.files.Get(ctx.Request().Context(), userID(ctx), id)
	if err != nil {
		return err
	}
	return ctx.Attachment(c.files.BlobPath(file), file.OriginalName)
}

// (DELETE /api/files/:id).
func (c *Controller) DeleteFile(ctx echo.Context) error {
	id, err := fileID(ctx)
	if err != nil {
		return err
	}
	if err := c.files.Delete(ctx.Request().Context(), userID(ctx), id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, map[string]string{"message": "file deleted"})
}

func deviceContext(ctx echo.Context) models.DeviceContext {
	return models.DeviceContext{
		UserAgent: ctx.Request().UserAgent(),
		IPAddress: ctx.RealIP(),
	}
}

func userID(ctx echo.Context) int64 {
	id, _ := ctx.Get(models.MwUserIDKey).(int64)
	return id
}

func fileID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, util.NewResponseError(http.StatusBadRequest, "invalid file id")
	}
	return id, nil
}
