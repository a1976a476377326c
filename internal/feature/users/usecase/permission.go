package usecase

import (
	"context"

	"github.com/google/uuid"

	"users_backend/internal/feature/users/domain"
)

// permissionRule は操作に要求される権限の種類を表します。
type permissionRule int

const (
	// adminOnly は管理者フラグを持つリクエスタのみ許可します。
	adminOnly permissionRule = iota
	// selfOrAdmin は自分自身への操作、または管理者のみ許可します。
	selfOrAdmin
)

// permissionEvaluator はリクエスタと対象に対して許可/拒否を判定します。
// 管理者フラグはトークンのクレームを信用せず、毎回ストアから現在値を
// 再取得します（トークン発行後に権限が変わる可能性があるため）。
type permissionEvaluator struct {
	users UserRepository
}

// evaluate は指定ルールで権限を判定します。
// 許可の場合はnil、権限不足はdomain.ErrOnlyAdmins、リクエスタが
// 存在しない場合はdomain.ErrUserNotFoundを返します（両者は区別されます）。
func (e *permissionEvaluator) evaluate(ctx context.Context, requesterGuid, targetGuid uuid.UUID, rule permissionRule) error {
	if rule == selfOrAdmin && requesterGuid == targetGuid {
		return nil
	}

	admin, err := e.users.IsAdmin(ctx, requesterGuid)
	if err != nil {
		return err
	}
	if !admin {
		return domain.ErrOnlyAdmins
	}
	return nil
}
