package handler

import (
	"net/http"
	"strconv"
	"strings"

	"acharam/internal/domain/model"
	"acharam/internal/repository"
	"acharam/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuditLogHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAuditLogHandler(uc *usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{uc: uc}
}

func (h *AuditLogHandler) RegisterRoutes(api *echo.Group, g Guards) {
	api.GET("/admin/audit-logs", h.list, g.Admin...)
}

// GET /api/admin/audit-logs?userId=&action=&entityType=&entityId=&from=&to=&limit=&offset=
func (h *AuditLogHandler) list(c echo.Context) error {
	var f repository.AuditLogFilter

	actor, err := queryInt64Ptr(c, "userId")
	if err != nil {
		return badRequest(c, "invalid userId")
	}
	f.ActorUserID = actor

	entityID, err := queryInt64Ptr(c, "entityId")
	if err != nil {
		return badRequest(c, "invalid entityId")
	}
	f.EntityID = entityID

	// action=UPDATE_PRODUCT,DELETE_PRODUCT のようにカンマ区切りで複数可
	for _, v := range strings.Split(c.QueryParam("action"), ",") {
		if strings.TrimSpace(v) == "" {
			continue
		}
		a, err := model.ParseAuditAction(v)
		if err != nil {
			return badRequest(c, "invalid action")
		}
		f.Actions = append(f.Actions, a)
	}
	if v := c.QueryParam("entityType"); v != "" {
		t, err := model.ParseAuditEntityType(v)
		if err != nil {
			return badRequest(c, "invalid entityType")
		}
		f.EntityType = &t
	}

	if f.CreatedFrom, err = usecase.ParseDateTimeRFC3339(c.QueryParam("from")); err != nil {
		return writeError(c, err)
	}
	if f.CreatedTo, err = usecase.ParseDateTimeRFC3339(c.QueryParam("to")); err != nil {
		return writeError(c, err)
	}
	if f.Limit, err = queryInt(c, "limit", 50); err != nil {
		return badRequest(c, "invalid limit")
	}
	if f.Offset, err = queryInt(c, "offset", 0); err != nil {
		return badRequest(c, "invalid offset")
	}

	logs, total, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	return c.JSON(http.StatusOK, logs)
}
