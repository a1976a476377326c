// Package dto はusersフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "time"

// CreateUserReq はユーザー作成エンドポイントのリクエストボディです。
// ログイン名とパスワードは英数字のみ許可されます。
type CreateUserReq struct {
	Login    string     `json:"login" binding:"required,alphanum"`
	Password string     `json:"password" binding:"required,alphanum"`
	Name     string     `json:"name" binding:"required"`
	Gender   int        `json:"gender" binding:"gte=0,lte=2"`
	Birthday *time.Time `json:"birthday"`
	Admin    bool       `json:"admin"`
}

// UpdateInfoReq はプロフィール部分更新のリクエストボディです。
// 省略されたフィールドは変更されません。
type UpdateInfoReq struct {
	Name     *string    `json:"name"`
	Gender   *int       `json:"gender" binding:"omitempty,gte=0,lte=2"`
	Birthday *time.Time `json:"birthday"`
}

// UpdateLoginReq はログイン名変更のリクエストボディです。
type UpdateLoginReq struct {
	Login string `json:"login" binding:"required,alphanum"`
}

// UpdatePasswordReq はパスワード変更のリクエストボディです。
type UpdatePasswordReq struct {
	Password string `json:"password" binding:"required,alphanum"`
}

// DeleteUserReq は削除エンドポイントのリクエストボディです。
// Softがtrueの場合はソフト削除、falseの場合は完全削除です。
type DeleteUserReq struct {
	Soft bool `json:"soft"`
}
