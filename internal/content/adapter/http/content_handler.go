package http

import (
	"strconv"
	"strings"

	"showcase-cms/internal/content/domain/model"
	"showcase-cms/internal/content/usecase"
	"showcase-cms/internal/shared/logger"
	"showcase-cms/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// ContentHandler serves parents, collections, assets and notifications.
type ContentHandler struct {
	content       usecase.ContentUsecase
	assets        usecase.AssetUsecase
	notifications usecase.NotificationUsecase
	log           logger.Logger
}

func NewContentHandler(
	content usecase.ContentUsecase,
	assets usecase.AssetUsecase,
	notifications usecase.NotificationUsecase,
	log logger.Logger,
) *ContentHandler {
	return &ContentHandler{
		content:       content,
		assets:        assets,
		notifications: notifications,
		log:           log.WithComponent("content_http"),
	}
}

// RegisterRoutes mounts the API under router. protect guards mutating routes.
func (h *ContentHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	v1 := router.Group("/api/v1")

	parents := v1.Group("/parents")
	parents.Get("/", h.ListParents)
	parents.Post("/", protect, h.CreateParent)
	parents.Get("/:parentID", h.GetParent)
	parents.Put("/:parentID", protect, h.ReplaceParent)

	collections := parents.Group("/:parentID/collections/:key", h.scope)
	collections.Get("/", h.GetCollection)
	collections.Put("/", protect, h.ReplaceCollection)
	collections.Get("/history", protect, h.GetHistory)

	assets := v1.Group("/assets")
	assets.Get("/files/:fileID", h.ServeAsset)
	assets.Get("/:kind/resolve", h.ResolveAsset)
	assets.Post("/", protect, h.UploadAsset)

	v1.Post("/notifications", h.SubmitNotification)
}

// scope puts the parent and collection into the request context for logging.
func (h *ContentHandler) scope(c *fiber.Ctx) error {
	ctx := utils.WithParentID(c.UserContext(), c.Params("parentID"))
	ctx = utils.WithCollectionKey(ctx, c.Params("key"))
	c.SetUserContext(ctx)
	return c.Next()
}

func (h *ContentHandler) ListParents(c *fiber.Ctx) error {
	filter := model.ParentFilter{
		Kind:       model.ParentKind(c.Query("kind")),
		Program:    c.Query("program"),
		Tag:        c.Query("tag"),
		IncludeAll: c.QueryBool("includeAll", false),
	}
	parents, err := h.content.ListParents(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, parents)
}

func (h *ContentHandler) CreateParent(c *fiber.Ctx) error {
	var req usecase.CreateParentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "invalid request body"))
	}
	parent, err := h.content.CreateParent(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	setVersion(c, parent.Version)
	return respond(c, fiber.StatusCreated, parent)
}

func (h *ContentHandler) GetParent(c *fiber.Ctx) error {
	parent, err := h.content.GetParent(c.UserContext(), c.Params("parentID"))
	if err != nil {
		return respondError(c, err)
	}
	setVersion(c, parent.Version)
	return respond(c, fiber.StatusOK, parent)
}

type replaceParentBody struct {
	model.ParentDocument
	ExpectedVersion int64 `json:"expectedVersion"`
}

func (h *ContentHandler) ReplaceParent(c *fiber.Ctx) error {
	var body replaceParentBody
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "invalid request body"))
	}
	expected, err := expectedVersion(c, body.ExpectedVersion)
	if err != nil {
		return respondError(c, err)
	}
	body.ParentDocument.ID = c.Params("parentID")

	parent, err := h.content.ReplaceParent(c.UserContext(), usecase.ReplaceParentRequest{
		Parent:          &body.ParentDocument,
		ExpectedVersion: expected,
	})
	if err != nil {
		return respondError(c, err)
	}
	setVersion(c, parent.Version)
	return respond(c, fiber.StatusOK, parent)
}

func (h *ContentHandler) GetCollection(c *fiber.Ctx) error {
	parentID, key := c.Params("parentID"), c.Params("key")
	switch view := c.Query("view", "raw"); view {
	case "raw":
		snap, err := h.content.GetCollection(c.UserContext(), parentID, key)
		if err != nil {
			return respondError(c, err)
		}
		setVersion(c, snap.Version)
		return respond(c, fiber.StatusOK, snap)
	case "reconciled":
		view, err := h.content.GetReconciledCollection(c.UserContext(), parentID, key)
		if err != nil {
			return respondError(c, err)
		}
		setVersion(c, view.Version)
		return respond(c, fiber.StatusOK, view)
	default:
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "view must be raw or reconciled"))
	}
}

type replaceCollectionBody struct {
	Items           []model.CollectionItem `json:"items"`
	ExpectedVersion int64                  `json:"expectedVersion"`
}

func (h *ContentHandler) ReplaceCollection(c *fiber.Ctx) error {
	var body replaceCollectionBody
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "invalid request body"))
	}
	expected, err := expectedVersion(c, body.ExpectedVersion)
	if err != nil {
		return respondError(c, err)
	}

	snap, err := h.content.ReplaceCollection(c.UserContext(), usecase.ReplaceCollectionRequest{
		ParentID:        c.Params("parentID"),
		Key:             c.Params("key"),
		Items:           body.Items,
		ExpectedVersion: expected,
	})
	if err != nil {
		h.log.WithContext(c.UserContext()).Warnf("Collection replace failed: %v", err)
		return respondError(c, err)
	}
	setVersion(c, snap.Version)
	return respond(c, fiber.StatusOK, snap)
}

func (h *ContentHandler) GetHistory(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	changes, err := h.content.History(c.UserContext(), c.Params("parentID"), c.Params("key"), limit)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, changes)
}

func (h *ContentHandler) ResolveAsset(c *fiber.Ctx) error {
	name := c.Query("name")
	if strings.TrimSpace(name) == "" {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "name is required"))
	}
	resolved, err := h.assets.Resolve(c.Params("kind"), name)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusOK, fiber.Map{"kind": c.Params("kind"), "name": name, "path": resolved})
}

func (h *ContentHandler) UploadAsset(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "multipart field \"file\" is required"))
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()

	asset, err := h.assets.Upload(c.UserContext(), usecase.UploadAssetRequest{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}, f)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, fiber.StatusCreated, asset)
}

func (h *ContentHandler) ServeAsset(c *fiber.Ctx) error {
	asset, body, err := h.assets.Open(c.UserContext(), c.Params("fileID"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, asset.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	size := int(asset.Size)
	if size <= 0 {
		size = -1
	}
	return c.SendStream(body, size)
}

func (h *ContentHandler) SubmitNotification(c *fiber.Ctx) error {
	var req model.NotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.NewError(fiber.StatusBadRequest, "invalid request body"))
	}
	receipt, err := h.notifications.Submit(c.UserContext(), &req)
	if err != nil {
		if receipt != nil {
			return c.Status(fiber.StatusBadGateway).JSON(Envelope{
				Success: false,
				Data:    receipt,
				Error:   "notification_failed",
				Message: "notification channel unavailable",
			})
		}
		return respondError(c, err)
	}
	return respond(c, fiber.StatusAccepted, receipt)
}

// expectedVersion prefers the body value and falls back to an If-Match header ("3" or 3).
func expectedVersion(c *fiber.Ctx, fromBody int64) (int64, error) {
	if fromBody != 0 {
		return fromBody, nil
	}
	header := strings.Trim(strings.TrimPrefix(strings.TrimSpace(c.Get(fiber.HeaderIfMatch)), "W/"), `"`)
	if header == "" || header == "*" {
		return 0, nil
	}
	v, err := strconv.ParseInt(header, 10, 64)
	if err != nil || v < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "If-Match must carry a document version")
	}
	return v, nil
}

func setVersion(c *fiber.Ctx, version int64) {
	c.Set(fiber.HeaderETag, `"`+strconv.FormatInt(version, 10)+`"`)
}
