// Package adapters はusersフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	authusecase "users_backend/internal/feature/auth/usecase"
	"users_backend/internal/feature/users/domain"
	"users_backend/internal/feature/users/domain/entity"
	"users_backend/internal/feature/users/usecase"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
// MySQL・PostgreSQL・SQLite（テスト）の各ダイアレクトで動作します。
type userGorm struct {
	db *gorm.DB
}

// userGormが各コンシューマーのインターフェースを実装していることをコンパイル時に検証します。
var (
	_ usecase.UserRepository     = (*userGorm)(nil)
	_ authusecase.UserRepository = (*userGorm)(nil)
)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタです。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// isUniqueViolation はストア層の一意制約違反エラーを判定します。
// 並行作成の敗者もここで決定的にdomainエラーへ写像されます。
func isUniqueViolation(err error) bool {
	// MySQLエラー1062: ユニークキーの重複エントリ
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	// PostgreSQL 23505: unique_violation
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// TranslateError有効時のダイアレクト共通表現（SQLiteテスト含む）
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// Create はユーザーをデータベースに追加します。
// 同じログイン名のレコードが既に存在する場合、domain.ErrNotUniqueLoginを返します。
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrNotUniqueLogin
		}
		return err
	}
	return nil
}

// FindByGuid はIDでユーザーを取得します。
// ユーザーが存在しない場合、domain.ErrUserNotFoundを返します。
func (r *userGorm) FindByGuid(ctx context.Context, guid uuid.UUID) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("guid = ?", guid).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByLogin はログイン名でユーザーを取得します（大文字小文字を区別する完全一致）。
// ユーザーが存在しない場合、domain.ErrUserNotFoundを返します。
func (r *userGorm) FindByLogin(ctx context.Context, login string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("login = ?", login).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindActiveByCredentials はログイン名とパスワードダイジェストの両方に一致する
// アクティブなユーザーを1クエリで取得します。
// 一致しない場合、どちらが誤っていたかを区別せずdomain.ErrUserNotFoundを返します。
func (r *userGorm) FindActiveByCredentials(ctx context.Context, login, passwordHash string) (*entity.User, error) {
	var u entity.User
	err := r.db.WithContext(ctx).
		Where("login = ? AND password_hash = ? AND revoked_on IS NULL AND revoked_by IS NULL", login, passwordHash).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindActiveByGuid はIDに一致するアクティブなユーザーを取得します。
// 失効済みまたは存在しない場合、domain.ErrUserNotFoundを返します。
func (r *userGorm) FindActiveByGuid(ctx context.Context, guid uuid.UUID) (*entity.User, error) {
	var u entity.User
	err := r.db.WithContext(ctx).
		Where("guid = ? AND revoked_on IS NULL AND revoked_by IS NULL", guid).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// IsAdmin はユーザーが管理者フラグを持つかを返します。
// レコードが存在しない場合はdomain.ErrUserNotFoundを返します（権限拒否とは区別されます）。
func (r *userGorm) IsAdmin(ctx context.Context, guid uuid.UUID) (bool, error) {
	u, err := r.FindByGuid(ctx, guid)
	if err != nil {
		return false, err
	}
	return u.Admin, nil
}

// IsActive はユーザーが失効していないかを返します。
// レコードが存在しない場合はfalseを返します。
func (r *userGorm) IsActive(ctx context.Context, guid uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("guid = ? AND revoked_on IS NULL AND revoked_by IS NULL", guid).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// exists はIDのレコードが存在するかを返します。
func (r *userGorm) exists(ctx context.Context, guid uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("guid = ?", guid).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateFields はパッチの非nilフィールドとModifiedスタンプを単一のUPDATEで適用します。
// 対象が存在しない場合はdomain.ErrUserNotFound、ログイン名の衝突は
// domain.ErrNotUniqueLoginを返します。自レコードへの同値ログイン更新は失敗しません。
func (r *userGorm) UpdateFields(ctx context.Context, guid uuid.UUID, patch usecase.UserPatch) error {
	found, err := r.exists(ctx, guid)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrUserNotFound
	}

	values := map[string]any{
		"modified_on": patch.ModifiedOn,
		"modified_by": patch.ModifiedBy,
	}
	if patch.Login != nil {
		values["login"] = *patch.Login
	}
	if patch.PasswordHash != nil {
		values["password_hash"] = *patch.PasswordHash
	}
	if patch.Name != nil {
		values["name"] = *patch.Name
	}
	if patch.Gender != nil {
		values["gender"] = *patch.Gender
	}
	if patch.Birthday != nil {
		values["birthday"] = *patch.Birthday
	}

	err = r.db.WithContext(ctx).Model(&entity.User{}).
		Where("guid = ?", guid).
		Updates(values).Error
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrNotUniqueLogin
		}
		return err
	}
	return nil
}

// DeleteSoft はRevokedOn/RevokedByを設定してレコードを失効させます。
// 対象は存在する必要がありますが、アクティブである必要はありません。
func (r *userGorm) DeleteSoft(ctx context.Context, guid uuid.UUID, revokedBy string, at time.Time) error {
	found, err := r.exists(ctx, guid)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrUserNotFound
	}

	return r.db.WithContext(ctx).Model(&entity.User{}).
		Where("guid = ?", guid).
		Updates(map[string]any{
			"revoked_on": at,
			"revoked_by": revokedBy,
		}).Error
}

// DeleteHard はレコードを完全に削除します。ログイン名は即座に再利用可能になります。
func (r *userGorm) DeleteHard(ctx context.Context, guid uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("guid = ?", guid).Delete(&entity.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Reactivate はRevokedOn/RevokedByを同時にクリアし、Modifiedスタンプを更新します。
// 既にアクティブなレコードへの実行はスタンプ更新のみ行い成功します。
func (r *userGorm) Reactivate(ctx context.Context, guid uuid.UUID, modifiedBy string, at time.Time) error {
	found, err := r.exists(ctx, guid)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrUserNotFound
	}

	return r.db.WithContext(ctx).Model(&entity.User{}).
		Where("guid = ?", guid).
		Updates(map[string]any{
			"revoked_on":  nil,
			"revoked_by":  nil,
			"modified_on": at,
			"modified_by": modifiedBy,
		}).Error
}

// ListActive はアクティブユーザーをCreatedOn降順で返します。
func (r *userGorm) ListActive(ctx context.Context) ([]*entity.User, error) {
	var users []*entity.User
	err := r.db.WithContext(ctx).
		Where("revoked_on IS NULL AND revoked_by IS NULL").
		Order("created_on DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListBornBefore は誕生日が設定済みかつカットオフ以前のユーザーを返します。
func (r *userGorm) ListBornBefore(ctx context.Context, cutoff time.Time) ([]*entity.User, error) {
	var users []*entity.User
	err := r.db.WithContext(ctx).
		Where("birthday IS NOT NULL AND birthday <= ?", cutoff).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
