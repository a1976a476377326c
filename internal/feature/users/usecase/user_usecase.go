// Package usecase はusersフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"users_backend/internal/feature/users/domain/entity"
)

// Requester は認証済み呼び出し元の識別情報です。
// 検証済みトークンのクレームからトランスポート層が抽出します。
type Requester struct {
	Guid  uuid.UUID
	Login string
}

// CreateUserInput はユーザー作成操作の入力です。
type CreateUserInput struct {
	Login    string
	Password string
	Name     string
	Gender   entity.Gender
	Birthday *time.Time
	Admin    bool
}

// UpdateInfoInput はプロフィール部分更新の入力です。
// nilのフィールドは変更されません。値付きポインタは「この値を設定する」を
// 意味し、GenderUnknownも正当な値として設定できます。
type UpdateInfoInput struct {
	Name     *string
	Gender   *entity.Gender
	Birthday *time.Time
}

// UserView はログイン名で照会した際の短い表示用モデルです。
type UserView struct {
	Name     string
	Gender   entity.Gender
	Birthday *time.Time
	IsActive bool
}

// UserDetailedView は本人照会とアクティブ一覧の表示用モデルです。
type UserDetailedView struct {
	Guid      uuid.UUID
	Login     string
	Name      string
	Gender    entity.Gender
	Birthday  *time.Time
	Admin     bool
	CreatedOn time.Time
	IsActive  bool
}

// UserFullView は全フィールド（パスワードハッシュを除く）の表示用モデルです。
// パスワードハッシュはユースケース境界を越えて公開されません。
type UserFullView struct {
	Guid       uuid.UUID
	Login      string
	Name       string
	Gender     entity.Gender
	Birthday   *time.Time
	Admin      bool
	CreatedOn  time.Time
	CreatedBy  string
	ModifiedOn *time.Time
	ModifiedBy *string
	RevokedOn  *time.Time
	RevokedBy  *string
}

// userUsecase はアカウントライフサイクルのビジネスロジックを実装します。
// ステートレスであり、複数の呼び出し元から同一ストアに対して並行に
// 呼び出しても安全です。
type userUsecase struct {
	users  UserRepository
	hasher PasswordHasher
	perm   permissionEvaluator
}

// NewUserUsecase はuserUsecaseの新しいインスタンスを生成します。
func NewUserUsecase(users UserRepository, hasher PasswordHasher) *userUsecase {
	return &userUsecase{
		users:  users,
		hasher: hasher,
		perm:   permissionEvaluator{users: users},
	}
}

// Create は新規ユーザーを作成します。管理者のみ実行できます。
// IDの採番、パスワードのハッシュ化、CreatedOn/CreatedByの記録を行います。
func (u *userUsecase) Create(ctx context.Context, requester Requester, in CreateUserInput) (uuid.UUID, error) {
	if err := u.perm.evaluate(ctx, requester.Guid, uuid.Nil, adminOnly); err != nil {
		return uuid.Nil, err
	}

	user := &entity.User{
		Guid:         uuid.New(),
		Login:        in.Login,
		PasswordHash: u.hasher.Hash(in.Password),
		Name:         in.Name,
		Gender:       in.Gender,
		Birthday:     in.Birthday,
		Admin:        in.Admin,
		CreatedOn:    time.Now().UTC(),
		CreatedBy:    requester.Login,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return uuid.Nil, err
	}
	return user.Guid, nil
}

// UpdateInfo は名前・性別・誕生日を部分更新します。本人または管理者のみ。
// nilのフィールドは保存値を変更せず、Modifiedスタンプは常に更新されます。
func (u *userUsecase) UpdateInfo(ctx context.Context, requester Requester, target uuid.UUID, in UpdateInfoInput) error {
	if err := u.perm.evaluate(ctx, requester.Guid, target, selfOrAdmin); err != nil {
		return err
	}

	patch := UserPatch{
		Name:       in.Name,
		Gender:     in.Gender,
		Birthday:   in.Birthday,
		ModifiedOn: time.Now().UTC(),
		ModifiedBy: requester.Login,
	}
	return u.users.UpdateFields(ctx, target, patch)
}

// UpdateLogin はログイン名を変更します。本人または管理者のみ。
// 新しいログイン名は失効済みレコードも含め全レコードで一意である必要が
// あります。変更なしの同値更新は失敗しません。
func (u *userUsecase) UpdateLogin(ctx context.Context, requester Requester, target uuid.UUID, newLogin string) error {
	if err := u.perm.evaluate(ctx, requester.Guid, target, selfOrAdmin); err != nil {
		return err
	}

	patch := UserPatch{
		Login:      &newLogin,
		ModifiedOn: time.Now().UTC(),
		ModifiedBy: requester.Login,
	}
	return u.users.UpdateFields(ctx, target, patch)
}

// UpdatePassword はパスワードを変更します。本人または管理者のみ。
// 平文はミューテーション適用前にハッシュ化され、保存もログ出力もされません。
func (u *userUsecase) UpdatePassword(ctx context.Context, requester Requester, target uuid.UUID, password string) error {
	if err := u.perm.evaluate(ctx, requester.Guid, target, selfOrAdmin); err != nil {
		return err
	}

	hash := u.hasher.Hash(password)
	patch := UserPatch{
		PasswordHash: &hash,
		ModifiedOn:   time.Now().UTC(),
		ModifiedBy:   requester.Login,
	}
	return u.users.UpdateFields(ctx, target, patch)
}

// Reactivate は失効済みユーザーを復活させます。管理者のみ。
// RevokedOn/RevokedByを同時にクリアし、Modifiedスタンプを更新します。
// 既にアクティブなユーザーへの実行は冪等に成功します。
func (u *userUsecase) Reactivate(ctx context.Context, requester Requester, target uuid.UUID) error {
	if err := u.perm.evaluate(ctx, requester.Guid, uuid.Nil, adminOnly); err != nil {
		return err
	}
	return u.users.Reactivate(ctx, target, requester.Login, time.Now().UTC())
}

// Delete はユーザーを削除します。管理者のみ。
// isSoftがtrueの場合はRevokedOn/RevokedByを設定するソフト削除、
// falseの場合はレコードを完全に削除します。
func (u *userUsecase) Delete(ctx context.Context, requester Requester, target uuid.UUID, isSoft bool) error {
	if err := u.perm.evaluate(ctx, requester.Guid, uuid.Nil, adminOnly); err != nil {
		return err
	}

	if isSoft {
		return u.users.DeleteSoft(ctx, target, requester.Login, time.Now().UTC())
	}
	return u.users.DeleteHard(ctx, target)
}

// ReadCurrent はリクエスタ自身のレコードを返します。
// 有効なリクエスタとして存在すること以外の権限チェックはありません。
func (u *userUsecase) ReadCurrent(ctx context.Context, requester Requester) (*UserDetailedView, error) {
	user, err := u.users.FindByGuid(ctx, requester.Guid)
	if err != nil {
		return nil, err
	}
	return newDetailedView(user), nil
}

// ReadByLogin はログイン名でユーザーを照会します。管理者のみ。
func (u *userUsecase) ReadByLogin(ctx context.Context, requester Requester, login string) (*UserView, error) {
	if err := u.perm.evaluate(ctx, requester.Guid, uuid.Nil, adminOnly); err != nil {
		return nil, err
	}

	user, err := u.users.FindByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	return &UserView{
		Name:     user.Name,
		Gender:   user.Gender,
		Birthday: user.Birthday,
		IsActive: user.IsActive(),
	}, nil
}

// ReadByGuid はIDでユーザーを照会します。管理者のみ。
func (u *userUsecase) ReadByGuid(ctx context.Context, requester Requester, target uuid.UUID) (*UserFullView, error) {
	if err := u.perm.evaluate(ctx, requester.Guid, uuid.Nil, adminOnly); err != nil {
		return nil, err
	}

	user, err := u.users.FindByGuid(ctx, target)
	if err != nil {
		return nil, err
	}
	return newFullView(user), nil
}

// ListActive はアクティブユーザーをCreatedOn降順で返します。管理者のみ。
func (u *userUsecase) ListActive(ctx context.Context, requester Requester) ([]*UserDetailedView, error) {
	if err := u.perm.evaluate(ctx, requester.Guid, uuid.Nil, adminOnly); err != nil {
		return nil, err
	}

	users, err := u.users.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*UserDetailedView, 0, len(users))
	for _, user := range users {
		views = append(views, newDetailedView(user))
	}
	return views, nil
}

// ListElderThan は指定年齢以上のユーザーを返します。管理者のみ。
// 現在時刻（UTC）から年齢を引いた日付以前に生まれたユーザーが対象です。
func (u *userUsecase) ListElderThan(ctx context.Context, requester Requester, age int) ([]*UserFullView, error) {
	if err := u.perm.evaluate(ctx, requester.Guid, uuid.Nil, adminOnly); err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(-age, 0, 0)
	users, err := u.users.ListBornBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	views := make([]*UserFullView, 0, len(users))
	for _, user := range users {
		views = append(views, newFullView(user))
	}
	return views, nil
}

func newDetailedView(user *entity.User) *UserDetailedView {
	return &UserDetailedView{
		Guid:      user.Guid,
		Login:     user.Login,
		Name:      user.Name,
		Gender:    user.Gender,
		Birthday:  user.Birthday,
		Admin:     user.Admin,
		CreatedOn: user.CreatedOn,
		IsActive:  user.IsActive(),
	}
}

func newFullView(user *entity.User) *UserFullView {
	return &UserFullView{
		Guid:       user.Guid,
		Login:      user.Login,
		Name:       user.Name,
		Gender:     user.Gender,
		Birthday:   user.Birthday,
		Admin:      user.Admin,
		CreatedOn:  user.CreatedOn,
		CreatedBy:  user.CreatedBy,
		ModifiedOn: user.ModifiedOn,
		ModifiedBy: user.ModifiedBy,
		RevokedOn:  user.RevokedOn,
		RevokedBy:  user.RevokedBy,
	}
}
