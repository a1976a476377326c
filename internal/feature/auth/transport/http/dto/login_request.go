// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// LoginReq は/auth/loginエンドポイントのリクエストボディを表します。
// ログイン名とパスワードは英数字のみ許可されます。
type LoginReq struct {
	Login    string `json:"login" binding:"required,alphanum"`
	Password string `json:"password" binding:"required,alphanum"`
}
