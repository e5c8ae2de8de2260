package domain

type CtxKey string

const (
	KeyAuthID    CtxKey = "AuthID"
	KeyUserEmail CtxKey = "Email"
	KeyAuthLevel CtxKey = "AuthLevel"
)
