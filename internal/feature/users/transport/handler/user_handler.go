// Package handler はusersフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"users_backend/internal/feature/users/domain"
	"users_backend/internal/feature/users/domain/entity"
	"users_backend/internal/feature/users/transport/http/dto"
	"users_backend/internal/feature/users/usecase"
	jwtmw "users_backend/internal/platform/jwt"
)

// UserUsecase はアカウントライフサイクル操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserUsecase interface {
	Create(ctx context.Context, requester usecase.Requester, in usecase.CreateUserInput) (uuid.UUID, error)
	UpdateInfo(ctx context.Context, requester usecase.Requester, target uuid.UUID, in usecase.UpdateInfoInput) error
	UpdateLogin(ctx context.Context, requester usecase.Requester, target uuid.UUID, newLogin string) error
	UpdatePassword(ctx context.Context, requester usecase.Requester, target uuid.UUID, password string) error
	Reactivate(ctx context.Context, requester usecase.Requester, target uuid.UUID) error
	Delete(ctx context.Context, requester usecase.Requester, target uuid.UUID, isSoft bool) error
	ReadCurrent(ctx context.Context, requester usecase.Requester) (*usecase.UserDetailedView, error)
	ReadByLogin(ctx context.Context, requester usecase.Requester, login string) (*usecase.UserView, error)
	ReadByGuid(ctx context.Context, requester usecase.Requester, target uuid.UUID) (*usecase.UserFullView, error)
	ListActive(ctx context.Context, requester usecase.Requester) ([]*usecase.UserDetailedView, error)
	ListElderThan(ctx context.Context, requester usecase.Requester, age int) ([]*usecase.UserFullView, error)
}

// UserHandler はユーザー管理操作のHTTPリクエストを処理します。
type UserHandler struct {
	users UserUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserUsecase) *UserHandler {
	return &UserHandler{users: users}
}

// requesterFromContext は認証ミドルウェアが格納したリクエスタ識別情報を取り出します。
func requesterFromContext(c *gin.Context) (usecase.Requester, bool) {
	guid, okGuid := c.Get(jwtmw.ContextUserGuid)
	login, okLogin := c.Get(jwtmw.ContextUserLogin)
	if !okGuid || !okLogin {
		return usecase.Requester{}, false
	}
	g, okG := guid.(uuid.UUID)
	l, okL := login.(string)
	if !okG || !okL {
		return usecase.Requester{}, false
	}
	return usecase.Requester{Guid: g, Login: l}, true
}

// respondError はドメインエラーをHTTPステータスコードへ写像します。
// UserNotFound=404 / OnlyAdmins=403 / NotUniqueLogin=400 / その他=500
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrUserNotFound.Error()})
	case errors.Is(err, domain.ErrOnlyAdmins):
		c.JSON(http.StatusForbidden, gin.H{"error": domain.ErrOnlyAdmins.Error()})
	case errors.Is(err, domain.ErrNotUniqueLogin):
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrNotUniqueLogin.Error()})
	default:
		slog.Error("user operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// targetGuid はパスパラメータからユーザーIDを取り出します。
func targetGuid(c *gin.Context) (uuid.UUID, bool) {
	guid, err := uuid.Parse(c.Param("guid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user guid"})
		return uuid.Nil, false
	}
	return guid, true
}

// Create はユーザー作成エンドポイントを処理します。管理者のみ。
func (h *UserHandler) Create(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req dto.CreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guid, err := h.users.Create(c.Request.Context(), requester, usecase.CreateUserInput{
		Login:    req.Login,
		Password: req.Password,
		Name:     req.Name,
		Gender:   entity.Gender(req.Gender),
		Birthday: req.Birthday,
		Admin:    req.Admin,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	slog.Info("user created", "guid", guid, "created_by", requester.Login)
	c.JSON(http.StatusCreated, dto.CreatedRes{Guid: guid.String()})
}

// UpdateInfo は指定ユーザーのプロフィールを部分更新します。本人または管理者のみ。
func (h *UserHandler) UpdateInfo(c *gin.Context) {
	target, ok := targetGuid(c)
	if !ok {
		return
	}
	h.updateInfo(c, target)
}

// UpdateCurrentInfo はリクエスタ自身のプロフィールを部分更新します。
func (h *UserHandler) UpdateCurrentInfo(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	h.updateInfo(c, requester.Guid)
}

func (h *UserHandler) updateInfo(c *gin.Context, target uuid.UUID) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req dto.UpdateInfoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := usecase.UpdateInfoInput{
		Name:     req.Name,
		Birthday: req.Birthday,
	}
	if req.Gender != nil {
		g := entity.Gender(*req.Gender)
		in.Gender = &g
	}
	if err := h.users.UpdateInfo(c.Request.Context(), requester, target, in); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// UpdateLogin は指定ユーザーのログイン名を変更します。本人または管理者のみ。
func (h *UserHandler) UpdateLogin(c *gin.Context) {
	target, ok := targetGuid(c)
	if !ok {
		return
	}
	h.updateLogin(c, target)
}

// UpdateCurrentLogin はリクエスタ自身のログイン名を変更します。
func (h *UserHandler) UpdateCurrentLogin(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	h.updateLogin(c, requester.Guid)
}

func (h *UserHandler) updateLogin(c *gin.Context, target uuid.UUID) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req dto.UpdateLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.UpdateLogin(c.Request.Context(), requester, target, req.Login); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// UpdatePassword は指定ユーザーのパスワードを変更します。本人または管理者のみ。
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	target, ok := targetGuid(c)
	if !ok {
		return
	}
	h.updatePassword(c, target)
}

// UpdateCurrentPassword はリクエスタ自身のパスワードを変更します。
func (h *UserHandler) UpdateCurrentPassword(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	h.updatePassword(c, requester.Guid)
}

func (h *UserHandler) updatePassword(c *gin.Context, target uuid.UUID) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req dto.UpdatePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), requester, target, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// Reactivate は失効済みユーザーを復活させます。管理者のみ。
func (h *UserHandler) Reactivate(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	target, ok := targetGuid(c)
	if !ok {
		return
	}
	if err := h.users.Reactivate(c.Request.Context(), requester, target); err != nil {
		respondError(c, err)
		return
	}
	slog.Info("user reactivated", "guid", target, "by", requester.Login)
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// Delete はユーザーを削除します。管理者のみ。
// リクエストボディのsoftフラグでソフト削除か完全削除かを選択します。
func (h *UserHandler) Delete(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	target, ok := targetGuid(c)
	if !ok {
		return
	}
	var req dto.DeleteUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.Delete(c.Request.Context(), requester, target, req.Soft); err != nil {
		respondError(c, err)
		return
	}
	slog.Info("user deleted", "guid", target, "soft", req.Soft, "by", requester.Login)
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// ReadCurrent はリクエスタ自身のレコードを返します。
func (h *UserHandler) ReadCurrent(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	view, err := h.users.ReadCurrent(c.Request.Context(), requester)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detailedRes(view))
}

// ReadByLogin はログイン名でユーザーを照会します。管理者のみ。
func (h *UserHandler) ReadByLogin(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	view, err := h.users.ReadByLogin(c.Request.Context(), requester, c.Param("login"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserRes{
		Name:     view.Name,
		Gender:   int(view.Gender),
		Birthday: view.Birthday,
		IsActive: view.IsActive,
	})
}

// ReadByGuid はIDでユーザーを照会します。管理者のみ。
func (h *UserHandler) ReadByGuid(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	target, ok := targetGuid(c)
	if !ok {
		return
	}
	view, err := h.users.ReadByGuid(c.Request.Context(), requester, target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fullRes(view))
}

// ListActive はアクティブユーザー一覧を返します。管理者のみ。
func (h *UserHandler) ListActive(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	views, err := h.users.ListActive(c.Request.Context(), requester)
	if err != nil {
		respondError(c, err)
		return
	}
	res := make([]dto.UserDetailedRes, 0, len(views))
	for _, v := range views {
		res = append(res, detailedRes(v))
	}
	c.JSON(http.StatusOK, res)
}

// ListElderThan は指定年齢以上のユーザー一覧を返します。管理者のみ。
func (h *UserHandler) ListElderThan(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	age, err := strconv.Atoi(c.Param("age"))
	if err != nil || age < 1 || age > 110 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid age"})
		return
	}
	views, err := h.users.ListElderThan(c.Request.Context(), requester, age)
	if err != nil {
		respondError(c, err)
		return
	}
	res := make([]dto.UserFullRes, 0, len(views))
	for _, v := range views {
		res = append(res, fullRes(v))
	}
	c.JSON(http.StatusOK, res)
}

func detailedRes(v *usecase.UserDetailedView) dto.UserDetailedRes {
	return dto.UserDetailedRes{
		Guid:      v.Guid.String(),
		Login:     v.Login,
		Name:      v.Name,
		Gender:    int(v.Gender),
		Birthday:  v.Birthday,
		Admin:     v.Admin,
		CreatedOn: v.CreatedOn,
		IsActive:  v.IsActive,
	}
}

func fullRes(v *usecase.UserFullView) dto.UserFullRes {
	return dto.UserFullRes{
		Guid:       v.Guid.String(),
		Login:      v.Login,
		Name:       v.Name,
		Gender:     int(v.Gender),
		Birthday:   v.Birthday,
		Admin:      v.Admin,
		CreatedOn:  v.CreatedOn,
		CreatedBy:  v.CreatedBy,
		ModifiedOn: v.ModifiedOn,
		ModifiedBy: v.ModifiedBy,
		RevokedOn:  v.RevokedOn,
		RevokedBy:  v.RevokedBy,
	}
}
