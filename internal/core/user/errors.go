package user

import "errors"

var (
	// ErrUserNotFound はユーザーが存在しない場合に返却されます。
	ErrUserNotFound = errors.New("user: not found")
	// ErrUsernameAlreadyExists はユーザー名重複時に返却されます。
	ErrUsernameAlreadyExists = errors.New("user: username already exists")
	// ErrInvalidUsername はユーザー名が不正な場合に返却されます。
	ErrInvalidUsername = errors.New("user: invalid username")
	// ErrInvalidName は氏名が不正な場合に返却されます。
	ErrInvalidName = errors.New("user: invalid name")
	// ErrInvalidRole は権限区分が不正な場合に返却されます。
	ErrInvalidRole = errors.New("user: invalid role")
	// ErrInvalidID はIDが不正な場合に返却されます。
	ErrInvalidID = errors.New("user: invalid id")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("user: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("user: invalid page token")
)
