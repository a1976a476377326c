// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"users_backend/internal/feature/auth/domain"
	"users_backend/internal/feature/users/domain/entity"
)

// TokenPair は発行済みのアクセストークンとリフレッシュトークンの組です。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserRepository は認証に必要なユーザー照会を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// FindActiveByCredentials はログイン名とパスワードダイジェストの両方に一致する
	// アクティブなユーザーを取得します。一致しない場合はエラーを返します。
	FindActiveByCredentials(ctx context.Context, login, passwordHash string) (*entity.User, error)

	// FindActiveByGuid はIDに一致するアクティブなユーザーを取得します。
	// 失効済みまたは存在しない場合はエラーを返します。
	FindActiveByGuid(ctx context.Context, guid uuid.UUID) (*entity.User, error)

	// IsActive はユーザーが失効していないかを返します。
	IsActive(ctx context.Context, guid uuid.UUID) (bool, error)
}

// TokenGenerator はトークンペアの発行とリフレッシュトークンの検証を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenGenerator interface {
	// GeneratePair は指定されたユーザーの署名済みアクセストークンと
	// リフレッシュトークンを生成します。
	GeneratePair(userGuid uuid.UUID, login string) (accessToken, refreshToken string, err error)

	// ParseRefresh はリフレッシュトークンを構造的に検証（署名・有効期限・
	// 署名アルゴリズム）し、subjectのユーザーIDを返します。
	ParseRefresh(token string) (uuid.UUID, error)
}

// PasswordHasher はパスワードの一方向ダイジェストを生成します。
type PasswordHasher interface {
	Hash(plaintext string) string
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users  UserRepository
	tokens TokenGenerator
	hasher PasswordHasher
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, tokens TokenGenerator, hasher PasswordHasher) *authUsecase {
	return &authUsecase{
		users:  users,
		tokens: tokens,
		hasher: hasher,
	}
}

// LoginByCredentials はログイン名とパスワードを検証し、トークンペアを発行します。
// ログイン名とダイジェストを単一クエリで照合するため、どちらが誤っていたかは
// 漏洩しません。失敗は常にdomain.ErrUnauthorizedです。
func (u *authUsecase) LoginByCredentials(ctx context.Context, login, password string) (TokenPair, error) {
	user, err := u.users.FindActiveByCredentials(ctx, login, u.hasher.Hash(password))
	if err != nil {
		// ユーザー未検出・パスワード不一致・失効済みを区別せず汎用エラーを返す
		return TokenPair{}, domain.ErrUnauthorized
	}

	access, refresh, err := u.tokens.GeneratePair(user.Guid, user.Login)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate token pair: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh はリフレッシュトークンを検証し、新しいトークンペアを発行します。
// トークンが構造的に有効でも、ユーザーが失効済みであれば失敗します。
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	guid, err := u.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}

	user, err := u.users.FindActiveByGuid(ctx, guid)
	if err != nil {
		return TokenPair{}, domain.ErrUnauthorized
	}

	access, refresh, err := u.tokens.GeneratePair(user.Guid, user.Login)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate token pair: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// IsUserActive はトークンが指すユーザーが現在もアクティブかを返します。
// 失効済みユーザーの有効期限内トークンをリクエスト毎に拒否するために
// トークン検証ミドルウェアから呼び出されます。
func (u *authUsecase) IsUserActive(ctx context.Context, guid uuid.UUID) (bool, error) {
	return u.users.IsActive(ctx, guid)
}
