package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	GetSetting(ctx context.Context, key string) (Setting, error)
	PutSetting(ctx context.Context, in Setting) error

	CreateResult(ctx context.Context, in Result) error
	ListResults(ctx context.Context, filter ResultListFilter) ([]Result, error)
	DeleteResults(ctx context.Context) (int64, error)

	UpsertCheckin(ctx context.Context, in Checkin) error
	ListCheckins(ctx context.Context, sinceDay string) ([]Checkin, error)

	Close() error
}
