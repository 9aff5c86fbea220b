package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/wishgifthub/wishgifthub/internal/domain"
	"github.com/wishgifthub/wishgifthub/internal/present/rest/middleware"
	"github.com/wishgifthub/wishgifthub/internal/present/rest/presenter"
	"github.com/wishgifthub/wishgifthub/internal/service"
	"github.com/wishgifthub/wishgifthub/internal/token"
	"github.com/wishgifthub/wishgifthub/internal/usecase"
)

type Handler struct {
	auth        *usecase.AuthUsecase
	groups      *usecase.GroupUsecase
	invitations *usecase.InvitationUsecase
	wishes      *usecase.WishUsecase
	users       *usecase.UserUsecase
	metadata    *usecase.MetadataUsecase
	events      *service.EventService
	codec       *token.Codec
	version     string
}

func NewHandler(
	auth *usecase.AuthUsecase,
	groups *usecase.GroupUsecase,
	invitations *usecase.InvitationUsecase,
	wishes *usecase.WishUsecase,
	users *usecase.UserUsecase,
	metadata *usecase.MetadataUsecase,
	events *service.EventService,
	codec *token.Codec,
	version string,
) *Handler {
	return &Handler{
		auth:        auth,
		groups:      groups,
		invitations: invitations,
		wishes:      wishes,
		users:       users,
		metadata:    metadata,
		events:      events,
		codec:       codec,
		version:     version,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, auth *middleware.AuthMiddleware) {
	e.POST("/api/auth/register", h.handleRegister)
	e.POST("/api/auth/login", h.handleLogin)
	e.GET("/api/version", h.handleVersion)
	e.GET("/invite/:token", h.handleInvitationAccept)
	e.GET("/realtime", h.handleRealtime)

	withAuth := auth.RequireAuth

	e.GET("/api/metadata", h.handleMetadata, withAuth)

	e.POST("/api/groups", h.handleGroupCreate, withAuth)
	e.GET("/api/groups", h.handleGroupListOwned, withAuth)
	e.GET("/api/groups/me", h.handleGroupListJoined, withAuth)
	e.PUT("/api/groups/:groupId", h.handleGroupUpdate, withAuth)
	e.DELETE("/api/groups/:groupId", h.handleGroupDelete, withAuth)
	e.GET("/api/groups/:groupId/users", h.handleGroupRoster, withAuth)

	e.POST("/api/groups/:groupId/invitations", h.handleInvitationCreate, withAuth)
	e.GET("/api/groups/:groupId/invitations", h.handleInvitationList, withAuth)

	e.POST("/api/groups/:groupId/wishes", h.handleWishCreate, withAuth)
	e.GET("/api/groups/:groupId/wishes", h.handleWishList, withAuth)
	e.GET("/api/groups/:groupId/wishes/me", h.handleWishListMine, withAuth)
	e.GET("/api/groups/:groupId/wishes/users/:userId", h.handleWishListByUser, withAuth)
	e.DELETE("/api/groups/:groupId/wishes/:wishId", h.handleWishDelete, withAuth)
	e.POST("/api/groups/:groupId/wishes/:wishId/reserve", h.handleWishReserve, withAuth)
	e.DELETE("/api/groups/:groupId/wishes/:wishId/reserve", h.handleWishRelease, withAuth)

	e.GET("/api/users/me", h.handleUserMe, withAuth)
	e.PATCH("/api/users/me/avatar", h.handleUserAvatar, withAuth)
}

// requester pulls the authorization context stored by RequireAuth.
func requester(c echo.Context) (domain.Requester, error) {
	req, ok := middleware.RequesterFrom(c.Request().Context())
	if !ok {
		return domain.Requester{}, domain.UnauthenticatedError{Reason: "no credential"}
	}
	return req, nil
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, domain.ValidationError{Field: name, Reason: "not a valid uuid"}
	}
	return id, nil
}

// memberOf returns the requester and the group id from the path, after
// checking the token asserts membership in that group.
func memberOf(c echo.Context) (domain.Requester, uuid.UUID, error) {
	req, err := requester(c)
	if err != nil {
		return domain.Requester{}, uuid.Nil, err
	}
	groupID, err := pathUUID(c, "groupId")
	if err != nil {
		return domain.Requester{}, uuid.Nil, err
	}
	if !req.Member(groupID) {
		return domain.Requester{}, uuid.Nil, domain.ForbiddenError{Reason: "not a member of this group"}
	}
	return req, groupID, nil
}

// adminWithGroup gates the admin-only routes scoped to a group. Group
// ownership is checked one layer down, against the group record.
func adminWithGroup(c echo.Context) (domain.Requester, uuid.UUID, error) {
	req, err := requester(c)
	if err != nil {
		return domain.Requester{}, uuid.Nil, err
	}
	if !req.IsAdmin {
		return domain.Requester{}, uuid.Nil, domain.ForbiddenError{Reason: "admin capability required"}
	}
	groupID, err := pathUUID(c, "groupId")
	if err != nil {
		return domain.Requester{}, uuid.Nil, err
	}
	return req, groupID, nil
}

// ----- auth -----

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(c echo.Context) error {
	ctx := c.Request().Context()

	var body credentialsRequest
	if err := c.Bind(&body); err != nil {
		return presenter.Error(c, domain.ValidationError{Field: "body", Reason: "malformed json"})
	}

	result, err := h.auth.Register(ctx, body.Email, body.Password)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, result)
}

func (h *Handler) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var body credentialsRequest
	if err := c.Bind(&body); err != nil {
		return presenter.Error(c, domain.ValidationError{Field: "body", Reason: "malformed json"})
	}

	result, err := h.auth.Login(ctx, body.Email, body.Password)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, result)
}

// ----- groups -----

type groupRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (h *Handler) handleGroupCreate(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := requester(c)
	if err != nil {
		return presenter.Error(c, err)
	}
	if !req.IsAdmin {
		return presenter.Error(c, domain.ForbiddenError{Reason: "admin capability required"})
	}

	var body groupRequest
	if err := c.Bind(&body); err != nil {
		return presenter.Error(c, domain.ValidationError{Field: "body", Reason: "malformed json"})
	}

	result, err := h.groups.Create(ctx, req, body.Name, domain.GroupType(body.Type))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, result)
}

func (h *Handler) handleGroupListOwned(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := requester(c)
	if err != nil {
		return presenter.Error(c, err)
	}
	if !req.IsAdmin {
		return presenter.Error(c, domain.ForbiddenError{Reason: "admin capability required"})
	}

	groups, err := h.groups.ListOwned(ctx, req)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, groups)
}

func (h *Handler) handleGroupListJoined(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := requester(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	groups, err := h.groups.ListJoined(ctx, req)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, groups)
}

func (h *Handler) handleGroupUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	req, groupID, err := adminWithGroup(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	var body groupRequest
	if err := c.Bind(&body); err != nil {
		return presenter.Error(c, domain.ValidationError{Field: "body", Reason: "malformed json"})
	}

	group, err := h.groups.Update(ctx, req, groupID, body.Name, domain.GroupType(body.Type))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, group)
}

func (h *Handler) handleGroupDelete(c echo.Context) error {
	ctx := c.Request().Context()

	req, groupID, err := adminWithGroup(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	if err := h.groups.Delete(ctx, req, groupID); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.NoContent(c)
}

func (h *Handler) handleGroupRoster(c echo.Context) error {
	ctx := c.Request().Context()

	req, groupID, err := memberOf(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	members, err := h.groups.Roster(ctx, req, groupID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, members)
}

// ----- invitations -----

type invitationRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleInvitationCreate(c echo.Context) error {
	ctx := c.Request().Context()

	req, groupID, err := adminWithGroup(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	var body invitationRequest
	if err := c.Bind(&body); err != nil {
		return presenter.Error(c, domain.ValidationError{Field: "body", Reason: "malformed json"})
	}

	result, err := h.invitations.Create(ctx, req, groupID, body.Email)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, result)
}

func (h *Handler) handleInvitationList(c echo.Context) error {
	ctx := c.Request().Context()

	req, groupID, err := adminWithGroup(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	invitations, err := h.invitations.List(ctx, req, groupID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, invitations)
}

// handleInvitationAccept is the public invitation link. Accepting is
// idempotent; the response carries a fresh capability token embedding
// the new group set.
func (h *Handler) handleInvitationAccept(c echo.Context) error {
	ctx := c.Request().Context()

	invToken, err := uuid.Parse(c.Param("token"))
	if err != nil {
		return presenter.Error(c, domain.ValidationError{Field: "token", Reason: "not a valid uuid"})
	}

	result, err := h.invitations.Accept(ctx, invToken)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, result)
}

// ----- wishes -----

func (h *Handler) handleWishCreate(c echo.Context) error {
	ctx := c.Request().Context()

	req, groupID, err := memberOf(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	var body usecase.WishInput
	if err := c.Bind(&body); err != nil {
		return presenter.Error(c, domain.ValidationError{Field: "body", Reason: "malformed json"})
	}

	wish, err := h.wishes.Create(ctx, req, groupID, body)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, wish)
}

func (h *Handler) handleWishList(c echo.Context) error {
	ctx := c.Request().Context()

	req, groupID, err := memberOf(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	wishes, err := h.wishes.ListForGroup(ctx, req, groupID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, wishes)
}

func (h *Handler) handleWishListMine(c echo.Context) error {
	ctx := c.Request().Context()

	req, groupID, err := memberOf(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	wishes, err := h.wishes.ListForAuthor(ctx, req, groupID, req.UserID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, wishes)
}

func (h *Handler) handleWishListByUser(c echo.Context) error {
	ctx := c.Request().Context()

	req, groupID, err := memberOf(c)
	if err != nil {
		return presenter.Error(c, err)
	}
	userID, err := pathUUID(c, "userId")
	if err != nil {
		return presenter.Error(c, err)
	}

	wishes, err := h.wishes.ListForAuthor(ctx, req, groupID, userID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, wishes)
}

func (h *Handler) handleWishDelete(c echo.Context) error {
	ctx := c.Request().Context()

	req, groupID, err := memberOf(c)
	if err != nil {
		return presenter.Error(c, err)
	}
	wishID, err := pathUUID(c, "wishId")
	if err != nil {
		return presenter.Error(c, err)
	}

	if err := h.wishes.Delete(ctx, req, groupID, wishID); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.NoContent(c)
}

func (h *Handler) handleWishReserve(c echo.Context) error {
	ctx := c.Request().Context()

	req, groupID, err := memberOf(c)
	if err != nil {
		return presenter.Error(c, err)
	}
	wishID, err := pathUUID(c, "wishId")
	if err != nil {
		return presenter.Error(c, err)
	}

	wish, err := h.wishes.Reserve(ctx, req, groupID, wishID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, wish)
}

func (h *Handler) handleWishRelease(c echo.Context) error {
	ctx := c.Request().Context()

	req, groupID, err := memberOf(c)
	if err != nil {
		return presenter.Error(c, err)
	}
	wishID, err := pathUUID(c, "wishId")
	if err != nil {
		return presenter.Error(c, err)
	}

	wish, err := h.wishes.Release(ctx, req, groupID, wishID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, wish)
}

// ----- users -----

func (h *Handler) handleUserMe(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := requester(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	user, err := h.users.Get(ctx, req)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, user)
}

type avatarRequest struct {
	AvatarID *string `json:"avatarId"`
	Pseudo   *string `json:"pseudo"`
}

func (h *Handler) handleUserAvatar(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := requester(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	var body avatarRequest
	if err := c.Bind(&body); err != nil {
		return presenter.Error(c, domain.ValidationError{Field: "body", Reason: "malformed json"})
	}

	user, err := h.users.UpdateProfile(ctx, req, body.AvatarID, body.Pseudo)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, user)
}

// ----- misc -----

func (h *Handler) handleVersion(c echo.Context) error {
	return presenter.OK(c, map[string]string{"version": h.version})
}

func (h *Handler) handleMetadata(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := requester(c); err != nil {
		return presenter.Error(c, err)
	}

	meta, err := h.metadata.Extract(ctx, c.QueryParam("url"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, meta)
}

// ----- realtime -----

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// realtimeRequester authenticates the websocket client. Browsers
// cannot set headers on websocket upgrades, so the capability token is
// also accepted as a query parameter.
func (h *Handler) realtimeRequester(c echo.Context) (domain.Requester, error) {
	raw := c.QueryParam("token")
	if raw == "" {
		header := c.Request().Header.Get("authorization")
		raw = strings.TrimPrefix(header, "Bearer ")
	}
	if raw == "" {
		return domain.Requester{}, domain.UnauthenticatedError{Reason: "missing token"}
	}
	req, err := h.codec.Verify(raw, time.Now())
	if err != nil {
		return domain.Requester{}, domain.UnauthenticatedError{Reason: "invalid or expired token"}
	}
	return req, nil
}

// handleRealtime streams wish events for every group the capability
// token asserts. The group set is fixed for the life of the socket;
// reconnect with a fresh token to pick up new memberships.
func (h *Handler) handleRealtime(c echo.Context) error {
	req, err := h.realtimeRequester(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	output := make(chan domain.GroupEvent)
	go h.events.Stream(ctx, req.GroupIDs.IDs(), output)

	quit := make(chan struct{})

	go func() {
		for {
			// client messages are ignored apart from closing the socket
			_, _, err := ws.ReadMessage()
			if err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.DebugContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				close(quit)
				break
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event, ok := <-output:
			if !ok {
				return nil
			}
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
