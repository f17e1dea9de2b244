package firm

import "errors"

var (
	// ErrFirmNotFound は事業所が存在しない場合に返却されます。
	ErrFirmNotFound = errors.New("firm: not found")
	// ErrNameAlreadyExists は事業所名の重複時に返却されます。
	ErrNameAlreadyExists = errors.New("firm: name already exists")
	// ErrInvalidName は事業所名が不正な場合に返却されます。
	ErrInvalidName = errors.New("firm: invalid name")
	// ErrInvalidHazardTier は危険有害性区分が不正な場合に返却されます。
	ErrInvalidHazardTier = errors.New("firm: invalid hazard tier")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("firm: invalid id")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("firm: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("firm: invalid page token")
)
